package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Setting value type constants. Values are stored as strings and
// coerced to the declared type by the typed accessors.
const (
	SettingTypeString  = "string"
	SettingTypeBoolean = "boolean"
	SettingTypeInteger = "integer"
	SettingTypeFloat   = "float"
	SettingTypeJSON    = "json"
)

// SettingsCategory groups related settings
type SettingsCategory struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Key      string `gorm:"not null;uniqueIndex" json:"key"`
	Label    string `gorm:"not null" json:"label"`
	Position int    `gorm:"not null;default:0" json:"position"`

	Settings []Setting `gorm:"foreignKey:CategoryID" json:"settings,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *SettingsCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (SettingsCategory) TableName() string {
	return "settings_categories"
}

// Setting is a single configuration value, string-backed with a
// declared type for typed accessors
type Setting struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CategoryID string           `gorm:"type:uuid;not null;index;uniqueIndex:idx_setting_category_key" json:"category_id"`
	Category   SettingsCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Key          string `gorm:"not null;uniqueIndex:idx_setting_category_key" json:"key"`
	Value        string `gorm:"type:text;not null" json:"value"`
	ValueType    string `gorm:"not null;default:string" json:"value_type"`
	DefaultValue string `gorm:"type:text" json:"default_value"`
	Description  string `json:"description,omitempty"`
}

// BeforeCreate hook to generate UUID
func (s *Setting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Setting) TableName() string {
	return "settings"
}

// UserSetting overrides a setting value for a single staff account
type UserSetting struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    string  `gorm:"type:uuid;not null;uniqueIndex:idx_user_setting" json:"user_id"`
	SettingID string  `gorm:"type:uuid;not null;uniqueIndex:idx_user_setting" json:"setting_id"`
	Value     string  `gorm:"type:text;not null" json:"value"`
	User      User    `gorm:"foreignKey:UserID" json:"-"`
	Setting   Setting `gorm:"foreignKey:SettingID" json:"-"`
}

// BeforeCreate hook to generate UUID
func (s *UserSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (UserSetting) TableName() string {
	return "user_settings"
}

// AgentSetting overrides a setting value for an agent acting on cases.
// Agent overrides take precedence over user overrides when resolving.
type AgentSetting struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AgentID   string  `gorm:"type:uuid;not null;uniqueIndex:idx_agent_setting" json:"agent_id"`
	SettingID string  `gorm:"type:uuid;not null;uniqueIndex:idx_agent_setting" json:"setting_id"`
	Value     string  `gorm:"type:text;not null" json:"value"`
	Agent     User    `gorm:"foreignKey:AgentID" json:"-"`
	Setting   Setting `gorm:"foreignKey:SettingID" json:"-"`
}

// BeforeCreate hook to generate UUID
func (s *AgentSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (AgentSetting) TableName() string {
	return "agent_settings"
}

// IsValidSettingType checks if the value type is valid
func IsValidSettingType(valueType string) bool {
	switch valueType {
	case SettingTypeString, SettingTypeBoolean, SettingTypeInteger,
		SettingTypeFloat, SettingTypeJSON:
		return true
	}
	return false
}
