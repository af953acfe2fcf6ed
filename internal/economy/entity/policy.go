package entity

import "fmt"

// InputFallback 决定输入不足时的处理方式。
type InputFallback uint8

const (
	// InputFallbackPartial 按满足比例部分生产。
	InputFallbackPartial InputFallback = iota
	// InputFallbackSkip 任一输入不足则本 tick 不生产。
	InputFallbackSkip
)

func (f InputFallback) String() string {
	switch f {
	case InputFallbackPartial:
		return "partial"
	case InputFallbackSkip:
		return "skip"
	default:
		return fmt.Sprintf("InputFallback(%d)", uint8(f))
	}
}

func (f InputFallback) MarshalText() ([]byte, error) {
	switch f {
	case InputFallbackPartial, InputFallbackSkip:
		return []byte(f.String()), nil
	default:
		return nil, fmt.Errorf("unknown input fallback %d", uint8(f))
	}
}

func (f *InputFallback) UnmarshalText(b []byte) error {
	v, err := ParseInputFallback(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func ParseInputFallback(s string) (InputFallback, error) {
	switch s {
	case "", "partial":
		return InputFallbackPartial, nil
	case "skip":
		return InputFallbackSkip, nil
	default:
		return 0, fmt.Errorf("unknown input fallback %q", s)
	}
}

// InputBufferMode 决定输入缓冲的补货目标。
type InputBufferMode uint8

const (
	// InputBufferAuto 补到缓冲容量。
	InputBufferAuto InputBufferMode = iota
	// InputBufferFixed 只补一个 tick 的需求量。
	InputBufferFixed
)

func (m InputBufferMode) String() string {
	switch m {
	case InputBufferAuto:
		return "auto"
	case InputBufferFixed:
		return "fixed"
	default:
		return fmt.Sprintf("InputBufferMode(%d)", uint8(m))
	}
}

func (m InputBufferMode) MarshalText() ([]byte, error) {
	switch m {
	case InputBufferAuto, InputBufferFixed:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("unknown input buffer mode %d", uint8(m))
	}
}

func (m *InputBufferMode) UnmarshalText(b []byte) error {
	v, err := ParseInputBufferMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func ParseInputBufferMode(s string) (InputBufferMode, error) {
	switch s {
	case "", "auto":
		return InputBufferAuto, nil
	case "fixed":
		return InputBufferFixed, nil
	default:
		return 0, fmt.Errorf("unknown input buffer mode %q", s)
	}
}

// Policy 是单个建筑的运行策略。
type Policy struct {
	TurnOff               bool            `json:"turn_off" bson:"turn_off"`
	HighPriority          bool            `json:"high_priority" bson:"high_priority"`
	PartialTransport      bool            `json:"partial_transport" bson:"partial_transport"`
	InputOverrideFallback InputFallback   `json:"input_override_fallback" bson:"input_override_fallback"`
	InputBuffer           InputBufferMode `json:"input_buffer" bson:"input_buffer"`
	InputCapacityOverride float64         `json:"input_capacity_override" bson:"input_capacity_override"` // >0 时覆盖缓冲容量
}

// Validate 拒绝未知的枚举值。
func (p Policy) Validate() error {
	if _, err := p.InputOverrideFallback.MarshalText(); err != nil {
		return err
	}
	if _, err := p.InputBuffer.MarshalText(); err != nil {
		return err
	}
	if p.InputCapacityOverride < 0 {
		return fmt.Errorf("negative input capacity override %v", p.InputCapacityOverride)
	}
	return nil
}
