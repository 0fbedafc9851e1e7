package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// DrawerStatus represents the lifecycle state of a cash drawer
type DrawerStatus int

const (
	DrawerStatusClosed DrawerStatus = 0
	DrawerStatusOpen   DrawerStatus = 1
)

func (s DrawerStatus) String() string {
	if s == DrawerStatusOpen {
		return "Open"
	}
	return "Closed"
}

func (s DrawerStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DrawerStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = DrawerStatus(i)
		return nil
	}
	if str == "Open" {
		*s = DrawerStatusOpen
	} else {
		*s = DrawerStatusClosed
	}
	return nil
}

func (s DrawerStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *DrawerStatus) Scan(value interface{}) error {
	if value == nil {
		*s = DrawerStatusClosed
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = DrawerStatus(v)
	case int:
		*s = DrawerStatus(v)
	}
	return nil
}

// MovementKind labels an entry of the drawer audit trail
type MovementKind string

const (
	MovementOpening MovementKind = "opening"
	MovementCashIn  MovementKind = "cash_in"
	MovementCashOut MovementKind = "cash_out"
	MovementSale    MovementKind = "sale"
	MovementClosing MovementKind = "closing"
)
