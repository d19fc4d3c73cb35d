package farm

// Farm is an aquaponics installation owned by a user.
type Farm struct {
	ID       int64  `json:"idakuaponik"`
	Name     string `json:"nama_farm"`
	Username string `json:"Username"`
}

// Pond is a subdivision of a farm.
type Pond struct {
	ID     int64  `json:"idkolam"`
	FarmID int64  `json:"idakuaponik"`
	Name   string `json:"nama_kolam"`
}
