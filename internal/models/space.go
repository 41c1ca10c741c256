package models

type SpaceType string

const (
	SpaceHome      SpaceType = "home"
	SpaceApartment SpaceType = "apartment"
	SpaceOffice    SpaceType = "office"
	SpaceWarehouse SpaceType = "warehouse"
	SpaceOther     SpaceType = "other"
)

type Space struct {
	BaseModel

	Name    string    `gorm:"not null"`
	Type    SpaceType `gorm:"not null;default:home"`
	Address string
	OwnerID uint `gorm:"not null;index"`

	// Relationships
	Owner   User     `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Hubs    []Hub    `gorm:"foreignKey:SpaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Devices []Device `gorm:"foreignKey:SpaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
