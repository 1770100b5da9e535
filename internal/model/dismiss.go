package model

// DismissDuration 关闭后不再展示的时长标识
type DismissDuration string

const (
	Dismiss1Hour     DismissDuration = "1hour"
	Dismiss3Hours    DismissDuration = "3hours"
	Dismiss6Hours    DismissDuration = "6hours"
	Dismiss12Hours   DismissDuration = "12hours"
	Dismiss1Day      DismissDuration = "1day"
	Dismiss3Days     DismissDuration = "3days"
	Dismiss1Week     DismissDuration = "1week"
	DismissPermanent DismissDuration = "permanent"

	DefaultDismissDuration = Dismiss1Day
)

// DismissDurations 所有合法的关闭时长，按时长升序
var DismissDurations = []DismissDuration{
	Dismiss1Hour, Dismiss3Hours, Dismiss6Hours, Dismiss12Hours,
	Dismiss1Day, Dismiss3Days, Dismiss1Week, DismissPermanent,
}

// Valid 判断关闭时长是否合法
func (d DismissDuration) Valid() bool {
	for _, v := range DismissDurations {
		if v == d {
			return true
		}
	}
	return false
}
