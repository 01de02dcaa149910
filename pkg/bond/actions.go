package bond

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fan direction wire values.
const (
	DirectionForward = 1
	DirectionReverse = -1
)

// Argument schemas for the actions the client validates before any network
// call. Actions not listed here are passed through untouched; the bridge is
// authoritative for anything it doesn't recognize.
var actionArgSchemas = map[string]json.RawMessage{
	ActionSetSpeed:      json.RawMessage(`{"type":"integer","minimum":0,"maximum":8}`),
	ActionSetDirection:  json.RawMessage(`{"enum":[-1,1]}`),
	ActionSetPosition:   json.RawMessage(`{"type":"integer","minimum":0,"maximum":100}`),
	ActionSetBrightness: json.RawMessage(`{"type":"integer","minimum":0,"maximum":100}`),
}

// ParseDirection maps the human-facing direction names onto the wire values.
func ParseDirection(s string) (int, error) {
	switch strings.ToLower(s) {
	case "forward":
		return DirectionForward, nil
	case "reverse":
		return DirectionReverse, nil
	}
	return 0, InvalidArgumentf("direction must be %q or %q", "forward", "reverse")
}

// validateAction checks an action's argument against its schema. Returns an
// invalid_argument error before any round trip is wasted.
func (c *Client) validateAction(action string, argument any) error {
	doc, ok := actionArgSchemas[action]
	if !ok {
		return nil
	}
	if argument == nil {
		return InvalidArgumentf("action %s requires an argument", action)
	}
	if err := c.validator.Validate(doc, argument); err != nil {
		return &Error{
			Kind:    KindInvalidArgument,
			Message: fmt.Sprintf("invalid argument for %s", action),
			Err:     err,
		}
	}
	return nil
}
