package models

// Settings is the single global configuration record.
// Updates replace a whole sub-object; there are no partial patches.
type Settings struct {
	General       GeneralSettings   `yaml:"general" json:"general" bson:"general"`
	Costs         CostSettings      `yaml:"costs" json:"costs" bson:"costs"`
	Notifications NotificationPrefs `yaml:"notifications" json:"notifications" bson:"notifications"`
}

// GeneralSettings is the company profile.
type GeneralSettings struct {
	CompanyName string `yaml:"company_name" json:"companyName" bson:"company_name"`
	Address     string `yaml:"address" json:"address" bson:"address"`
	Contact     string `yaml:"contact" json:"contact" bson:"contact"`
	Timezone    string `yaml:"timezone" json:"timezone" bson:"timezone"`
	TIN         string `yaml:"tin" json:"tin" bson:"tin"`
}

// CostSettings holds cost defaults and the collaborator credential.
type CostSettings struct {
	FuelPrice        float64 `yaml:"fuel_price" json:"fuelPrice" bson:"fuel_price"` // per liter
	PerDiem          float64 `yaml:"per_diem" json:"perDiem" bson:"per_diem"`
	AutosweepAccount string  `yaml:"autosweep_account" json:"autosweepAccount" bson:"autosweep_account"`
	EasytripAccount  string  `yaml:"easytrip_account" json:"easytripAccount" bson:"easytrip_account"`
	APIKey           string  `yaml:"api_key" json:"apiKey" bson:"-"`
}

// NotificationPrefs are the operator's alert toggles.
type NotificationPrefs struct {
	EmailAlerts       bool   `yaml:"email_alerts" json:"emailAlerts" bson:"email_alerts"`
	SMSAlerts         bool   `yaml:"sms_alerts" json:"smsAlerts" bson:"sms_alerts"`
	MaintenanceAlerts bool   `yaml:"maintenance_alerts" json:"maintenanceAlerts" bson:"maintenance_alerts"`
	DelayAlerts       bool   `yaml:"delay_alerts" json:"delayAlerts" bson:"delay_alerts"`
	AlertRecipients   string `yaml:"alert_recipients" json:"alertRecipients" bson:"alert_recipients"`
}

// DefaultSettings returns the RVL Movers defaults.
func DefaultSettings() Settings {
	return Settings{
		General: GeneralSettings{
			CompanyName: "RVL Movers Corporation",
			Address:     "Km 23 East Service Road, Brgy. Cupang, Muntinlupa",
			Contact:     "(02) 8850-3066",
			Timezone:    "Asia/Manila (GMT+8)",
			TIN:         "123-456-789-000",
		},
		Costs: CostSettings{
			FuelPrice:        68.50,
			PerDiem:          500.00,
			AutosweepAccount: "AS-8821-9921",
			EasytripAccount:  "ET-1123-4451",
		},
		Notifications: NotificationPrefs{
			EmailAlerts:       true,
			SMSAlerts:         false,
			MaintenanceAlerts: true,
			DelayAlerts:       true,
			AlertRecipients:   "operations@rvlmovers.com",
		},
	}
}
