package request

import "github.com/sangkips/tablepos/internal/domain/enum"

// TableStatusRequest sets a manual table status.
type TableStatusRequest struct {
	Status enum.TableStatus `json:"status"`
}
