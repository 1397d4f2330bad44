package graph

// Opcode identifies the operation a node performs.
type Opcode uint8

// Structural opcodes the scheduler inspects, followed by compute opcodes.
const (
	OpInputNode  Opcode = 0x00
	OpOutputNode Opcode = 0x01
	OpConstant   Opcode = 0x02
	OpBitcast    Opcode = 0x03
	OpConcat     Opcode = 0x04
	OpSlice      Opcode = 0x05

	OpReLU    Opcode = 0x10
	OpSigmoid Opcode = 0x11
	OpTanh    Opcode = 0x12
	OpAdd     Opcode = 0x13
	OpMul     Opcode = 0x14
	OpMatMul  Opcode = 0x15
)

func (o Opcode) String() string {
	switch o {
	case OpInputNode:
		return "input"
	case OpOutputNode:
		return "output"
	case OpConstant:
		return "constant"
	case OpBitcast:
		return "bitcast"
	case OpConcat:
		return "concat"
	case OpSlice:
		return "slice"
	case OpReLU:
		return "relu"
	case OpSigmoid:
		return "sigmoid"
	case OpTanh:
		return "tanh"
	case OpAdd:
		return "add"
	case OpMul:
		return "mul"
	case OpMatMul:
		return "matmul"
	default:
		return "unknown"
	}
}

// opcodeNames maps .sgr operation names to opcodes for the text frontend.
var opcodeNames = map[string]Opcode{
	"relu":    OpReLU,
	"sigmoid": OpSigmoid,
	"tanh":    OpTanh,
	"add":     OpAdd,
	"mul":     OpMul,
	"matmul":  OpMatMul,
}

// ComputeOpcode resolves a compute operation name used in .sgr sources.
func ComputeOpcode(name string) (Opcode, bool) {
	op, ok := opcodeNames[name]
	return op, ok
}
