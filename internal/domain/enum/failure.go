package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// FailureComponent names the collaborator that broke a checkout
type FailureComponent int

const (
	FailureUnknown   FailureComponent = 0
	FailureDrawer    FailureComponent = 1
	FailureInventory FailureComponent = 2
	FailureDatabase  FailureComponent = 3
)

var failureComponentNames = [...]string{"Unknown", "Drawer", "Inventory", "Database"}

func (c FailureComponent) String() string {
	if int(c) < 0 || int(c) >= len(failureComponentNames) {
		return "Unknown"
	}
	return failureComponentNames[c]
}

func (c FailureComponent) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *FailureComponent) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*c = FailureComponent(i)
		return nil
	}
	*c = FailureUnknown
	for i, name := range failureComponentNames {
		if name == str {
			*c = FailureComponent(i)
		}
	}
	return nil
}

func (c FailureComponent) Value() (driver.Value, error) {
	return int64(c), nil
}

func (c *FailureComponent) Scan(value interface{}) error {
	if value == nil {
		*c = FailureUnknown
		return nil
	}
	switch v := value.(type) {
	case int64:
		*c = FailureComponent(v)
	case int:
		*c = FailureComponent(v)
	}
	return nil
}

// FailedStatus tracks a failed transaction record until it is settled
type FailedStatus string

const (
	FailedPending   FailedStatus = "Pending"
	FailedResolved  FailedStatus = "Resolved"
	FailedCancelled FailedStatus = "Cancelled"
)
