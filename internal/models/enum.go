package models

// UnitType is the kind of irrigation unit an evaluation was performed on.
type UnitType string

const (
	UnitTypeHydraulicSector UnitType = "SETOR_HIDRAULICO"
	UnitTypeCenterPivot     UnitType = "PIVO_CENTRAL"
)

func (u UnitType) IsValid() bool {
	switch u {
	case UnitTypeHydraulicSector, UnitTypeCenterPivot:
		return true
	}
	return false
}

const (
	DefaultGridRows    = 4
	DefaultGridColumns = 4
)
