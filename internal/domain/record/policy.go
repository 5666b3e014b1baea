package record

import (
	"fmt"
)

// IDPolicy selects how a new record's id is chosen.
type IDPolicy string

const (
	// IDPolicyCount assigns len(collection)+1. Ids are reused after deletions.
	IDPolicyCount IDPolicy = "count"
	// IDPolicyMonotonic keeps a counter next to the collection; ids are never reused.
	IDPolicyMonotonic IDPolicy = "monotonic"
)

func (p IDPolicy) Validate() error {
	switch p {
	case IDPolicyCount, IDPolicyMonotonic:
		return nil
	}
	return fmt.Errorf("неверная политика идентификаторов: %s", p)
}

func (p IDPolicy) String() string {
	return string(p)
}
