package game

import (
	"fmt"
	"reach/utils"

	"gopkg.in/yaml.v3"
)

// Mode says whether a player drives the value function down (Min) or up (Max).
// A minimizing player is trying to reach the target set, a maximizing one to
// keep away from it.
type Mode int

const (
	Min Mode = iota
	Max
)

var modeNames = []string{"min", "max"}

func ParseMode(s string) (Mode, error) {
	i := utils.FindIndex(modeNames, s)
	if i < 0 {
		return 0, fmt.Errorf("unknown mode %q, want \"min\" or \"max\"", s)
	}
	return Mode(i), nil
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func (m Mode) Valid() bool {
	return m == Min || m == Max
}

func (m Mode) MarshalYAML() (any, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return m.String(), nil
}

func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = parsed
	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
