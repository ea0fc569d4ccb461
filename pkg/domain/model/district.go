package model

// SchoolInfo is the static directory entry for one campus
type SchoolInfo struct {
	Name      string
	Principal string
	Phone     string
	Hours     string
}

// DistrictInfo is the static, config-sourced district directory surfaced
// by the school information tool
type DistrictInfo struct {
	ID          string
	Name        string
	Address     string
	Phone       string
	Website     string
	OfficeHours string
	Schools     []SchoolInfo
}
