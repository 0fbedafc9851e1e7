package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TableStatus represents the seating state of a restaurant table
type TableStatus int

const (
	TableStatusAvailable    TableStatus = 0
	TableStatusOccupied     TableStatus = 1
	TableStatusReserved     TableStatus = 2
	TableStatusOutOfService TableStatus = 3
)

var tableStatusNames = [...]string{"Available", "Occupied", "Reserved", "OutOfService"}

func (s TableStatus) String() string {
	if int(s) < 0 || int(s) >= len(tableStatusNames) {
		return "Available"
	}
	return tableStatusNames[s]
}

// IsManual reports whether the status was set by staff rather than derived from the cart.
func (s TableStatus) IsManual() bool {
	return s == TableStatusReserved || s == TableStatusOutOfService
}

func (s TableStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TableStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = TableStatus(i)
		return nil
	}
	for i, name := range tableStatusNames {
		if name == str {
			*s = TableStatus(i)
			return nil
		}
	}
	*s = TableStatusAvailable
	return nil
}

func (s TableStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *TableStatus) Scan(value interface{}) error {
	if value == nil {
		*s = TableStatusAvailable
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = TableStatus(v)
	case int:
		*s = TableStatus(v)
	}
	return nil
}
