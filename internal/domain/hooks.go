package domain

// SwitchHooks defines scripts run around a profile switch
type SwitchHooks struct {
	BeforeSwitch string `yaml:"before_switch"`
	AfterSwitch  string `yaml:"after_switch"`
}

// IsEmpty returns true if no hooks are configured
func (h SwitchHooks) IsEmpty() bool {
	return h.BeforeSwitch == "" && h.AfterSwitch == ""
}
