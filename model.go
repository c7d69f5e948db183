package somfy

const (
	groupNotFound  = "group not found"
	statusNotFound = "status not found"
	infoNotFound   = "info not found"
)

// GeneralState holds the system flags shown on the control page. Flags not
// present on the page are left empty.
type GeneralState struct {
	BatteryFault string `json:"pbattery_nok"`
	CommFault    string `json:"pcom_nok"`
	DoorFault    string `json:"pdoor_nok"`
	HouseArmedOK string `json:"phouse_ok"`
	BoxOK        string `json:"pbox_ok"`
	GSMSignalOK  string `json:"pgsm_5_ok"`
	CameraOff    string `json:"pcam_off"`
}

// flag returns the field backing the given page class, or nil if the class is
// not one of the known flags.
func (s *GeneralState) flag(class string) *string {
	switch class {
	case "pbattery_nok":
		return &s.BatteryFault
	case "pcom_nok":
		return &s.CommFault
	case "pdoor_nok":
		return &s.DoorFault
	case "phouse_ok":
		return &s.HouseArmedOK
	case "pbox_ok":
		return &s.BoxOK
	case "pgsm_5_ok":
		return &s.GSMSignalOK
	case "pcam_off":
		return &s.CameraOff
	default:
		return nil
	}
}

type Group struct {
	Status string `json:"status"`
	Info   string `json:"info"`
}

// ZoneState is the alarm state of the three panel groups.
type ZoneState struct {
	GroupA Group `json:"groupa"`
	GroupB Group `json:"groupb"`
	GroupC Group `json:"groupc"`
}

func (s *ZoneState) group(id string) *Group {
	switch id {
	case "groupa":
		return &s.GroupA
	case "groupb":
		return &s.GroupB
	case "groupc":
		return &s.GroupC
	default:
		return nil
	}
}

var groupIDs = []string{"groupa", "groupb", "groupc"}
