package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"lexfund_crm_go/models"

	"gorm.io/gorm"
)

// SettingsRegistry is a process-wide cached view of the settings
// tables. Reads resolve against the cache; every mutation writes
// through to the database, records an audit entry, and invalidates
// the cache.
type SettingsRegistry struct {
	db *gorm.DB

	mu       sync.RWMutex
	loaded   bool
	settings map[string]models.Setting // "category.key" -> setting
	userOv   map[string]string         // "userID|settingID" -> value
	agentOv  map[string]string         // "agentID|settingID" -> value
}

// Settings is the global settings registry instance
var Settings *SettingsRegistry

// InitializeSettings creates the global registry backed by the given database
func InitializeSettings(db *gorm.DB) *SettingsRegistry {
	Settings = &SettingsRegistry{db: db}
	return Settings
}

// OverrideScope identifies whose override a mutation targets
type OverrideScope string

const (
	ScopeUser  OverrideScope = "user"
	ScopeAgent OverrideScope = "agent"
)

func settingCacheKey(categoryKey, key string) string {
	return categoryKey + "." + key
}

func overrideCacheKey(ownerID, settingID string) string {
	return ownerID + "|" + settingID
}

// load populates the cache from the database. Callers must not hold mu.
func (r *SettingsRegistry) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}
	return r.reloadLocked()
}

// reloadLocked repopulates the cache. Callers must hold mu.
func (r *SettingsRegistry) reloadLocked() error {
	var settings []models.Setting
	if err := r.db.Preload("Category").Find(&settings).Error; err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	var userOverrides []models.UserSetting
	if err := r.db.Find(&userOverrides).Error; err != nil {
		return fmt.Errorf("failed to load user overrides: %w", err)
	}

	var agentOverrides []models.AgentSetting
	if err := r.db.Find(&agentOverrides).Error; err != nil {
		return fmt.Errorf("failed to load agent overrides: %w", err)
	}

	r.settings = make(map[string]models.Setting, len(settings))
	for _, s := range settings {
		r.settings[settingCacheKey(s.Category.Key, s.Key)] = s
	}

	r.userOv = make(map[string]string, len(userOverrides))
	for _, o := range userOverrides {
		r.userOv[overrideCacheKey(o.UserID, o.SettingID)] = o.Value
	}

	r.agentOv = make(map[string]string, len(agentOverrides))
	for _, o := range agentOverrides {
		r.agentOv[overrideCacheKey(o.AgentID, o.SettingID)] = o.Value
	}

	r.loaded = true
	return nil
}

// Invalidate drops the cache so the next read reloads from the database
func (r *SettingsRegistry) Invalidate() {
	r.mu.Lock()
	r.loaded = false
	r.mu.Unlock()
}

// Lookup returns the setting definition for category.key
func (r *SettingsRegistry) Lookup(categoryKey, key string) (models.Setting, bool) {
	if err := r.load(); err != nil {
		log.Printf("[SETTINGS] cache load failed: %v", err)
		return models.Setting{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.settings[settingCacheKey(categoryKey, key)]
	return s, ok
}

// Resolve returns the effective raw value for category.key, applying
// override precedence: agent override, then user override, then the
// setting value, then its default.
func (r *SettingsRegistry) Resolve(categoryKey, key, userID, agentID string) (string, bool) {
	setting, ok := r.Lookup(categoryKey, key)
	if !ok {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if agentID != "" {
		if v, ok := r.agentOv[overrideCacheKey(agentID, setting.ID)]; ok {
			return v, true
		}
	}
	if userID != "" {
		if v, ok := r.userOv[overrideCacheKey(userID, setting.ID)]; ok {
			return v, true
		}
	}
	if setting.Value != "" {
		return setting.Value, true
	}
	return setting.DefaultValue, true
}

// GetString returns the effective value as a string
func (r *SettingsRegistry) GetString(categoryKey, key, userID, agentID string) string {
	v, ok := r.Resolve(categoryKey, key, userID, agentID)
	if !ok {
		return ""
	}
	return v
}

// GetBool returns the effective value coerced to bool. Unparseable
// values fall back to the default value, then to false.
func (r *SettingsRegistry) GetBool(categoryKey, key, userID, agentID string) bool {
	setting, ok := r.Lookup(categoryKey, key)
	if !ok {
		return false
	}
	v, _ := r.Resolve(categoryKey, key, userID, agentID)
	if b, err := parseBool(v); err == nil {
		return b
	}
	if b, err := parseBool(setting.DefaultValue); err == nil {
		return b
	}
	return false
}

// GetInt returns the effective value coerced to int64
func (r *SettingsRegistry) GetInt(categoryKey, key, userID, agentID string) int64 {
	setting, ok := r.Lookup(categoryKey, key)
	if !ok {
		return 0
	}
	v, _ := r.Resolve(categoryKey, key, userID, agentID)
	if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
		return n
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(setting.DefaultValue), 10, 64); err == nil {
		return n
	}
	return 0
}

// GetFloat returns the effective value coerced to float64
func (r *SettingsRegistry) GetFloat(categoryKey, key, userID, agentID string) float64 {
	setting, ok := r.Lookup(categoryKey, key)
	if !ok {
		return 0
	}
	v, _ := r.Resolve(categoryKey, key, userID, agentID)
	if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
		return f
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(setting.DefaultValue), 64); err == nil {
		return f
	}
	return 0
}

// GetJSON unmarshals the effective value into dest. Unparseable values
// fall back to the default value; if both fail the error is returned.
func (r *SettingsRegistry) GetJSON(categoryKey, key, userID, agentID string, dest interface{}) error {
	setting, ok := r.Lookup(categoryKey, key)
	if !ok {
		return fmt.Errorf("setting %s.%s not found", categoryKey, key)
	}
	v, _ := r.Resolve(categoryKey, key, userID, agentID)
	if err := json.Unmarshal([]byte(v), dest); err == nil {
		return nil
	}
	if err := json.Unmarshal([]byte(setting.DefaultValue), dest); err != nil {
		return fmt.Errorf("setting %s.%s is not valid JSON: %w", categoryKey, key, err)
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", v)
}

// validateValueForType rejects values that cannot be coerced to the
// setting's declared type. String values are always accepted.
func validateValueForType(valueType, value string) error {
	switch valueType {
	case models.SettingTypeBoolean:
		if _, err := parseBool(value); err != nil {
			return fmt.Errorf("value %q is not a valid boolean", value)
		}
	case models.SettingTypeInteger:
		if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
			return fmt.Errorf("value %q is not a valid integer", value)
		}
	case models.SettingTypeFloat:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return fmt.Errorf("value %q is not a valid float", value)
		}
	case models.SettingTypeJSON:
		if !json.Valid([]byte(value)) {
			return fmt.Errorf("value is not valid JSON")
		}
	}
	return nil
}

// SetValue updates a setting's stored value, writing an audit entry
// and invalidating the cache.
func (r *SettingsRegistry) SetValue(ctx AuditContext, categoryKey, key, value string) (*models.Setting, error) {
	setting, ok := r.Lookup(categoryKey, key)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	if err := validateValueForType(setting.ValueType, value); err != nil {
		return nil, err
	}

	oldValue := setting.Value
	if err := r.db.Model(&models.Setting{}).Where("id = ?", setting.ID).
		Update("value", value).Error; err != nil {
		return nil, fmt.Errorf("failed to update setting: %w", err)
	}

	if err := WriteAuditEvent(r.db, ctx, models.AuditActionUpdate,
		"Setting", setting.ID, settingCacheKey(categoryKey, key),
		"Setting value changed",
		map[string]string{"value": oldValue},
		map[string]string{"value": value},
	); err != nil {
		log.Printf("[AUDIT] Failed to record setting change: %v", err)
	}

	r.Invalidate()
	setting.Value = value
	return &setting, nil
}

// SetOverride creates or updates a per-user or per-agent override,
// writing an audit entry and invalidating the cache.
func (r *SettingsRegistry) SetOverride(ctx AuditContext, scope OverrideScope, ownerID, categoryKey, key, value string) error {
	setting, ok := r.Lookup(categoryKey, key)
	if !ok {
		return gorm.ErrRecordNotFound
	}

	if err := validateValueForType(setting.ValueType, value); err != nil {
		return err
	}

	var oldValue string
	switch scope {
	case ScopeAgent:
		var existing models.AgentSetting
		err := r.db.Where("agent_id = ? AND setting_id = ?", ownerID, setting.ID).First(&existing).Error
		if err == nil {
			oldValue = existing.Value
			if err := r.db.Model(&existing).Update("value", value).Error; err != nil {
				return fmt.Errorf("failed to update agent override: %w", err)
			}
		} else if err == gorm.ErrRecordNotFound {
			override := models.AgentSetting{AgentID: ownerID, SettingID: setting.ID, Value: value}
			if err := r.db.Create(&override).Error; err != nil {
				return fmt.Errorf("failed to create agent override: %w", err)
			}
		} else {
			return err
		}
	case ScopeUser:
		var existing models.UserSetting
		err := r.db.Where("user_id = ? AND setting_id = ?", ownerID, setting.ID).First(&existing).Error
		if err == nil {
			oldValue = existing.Value
			if err := r.db.Model(&existing).Update("value", value).Error; err != nil {
				return fmt.Errorf("failed to update user override: %w", err)
			}
		} else if err == gorm.ErrRecordNotFound {
			override := models.UserSetting{UserID: ownerID, SettingID: setting.ID, Value: value}
			if err := r.db.Create(&override).Error; err != nil {
				return fmt.Errorf("failed to create user override: %w", err)
			}
		} else {
			return err
		}
	default:
		return fmt.Errorf("unknown override scope %q", scope)
	}

	if err := WriteAuditEvent(r.db, ctx, models.AuditActionUpdate,
		"SettingOverride", setting.ID, settingCacheKey(categoryKey, key),
		fmt.Sprintf("%s override set for %s", scope, ownerID),
		map[string]string{"value": oldValue},
		map[string]string{"value": value},
	); err != nil {
		log.Printf("[AUDIT] Failed to record override change: %v", err)
	}

	r.Invalidate()
	return nil
}

// DeleteOverride removes a per-user or per-agent override
func (r *SettingsRegistry) DeleteOverride(ctx AuditContext, scope OverrideScope, ownerID, categoryKey, key string) error {
	setting, ok := r.Lookup(categoryKey, key)
	if !ok {
		return gorm.ErrRecordNotFound
	}

	var result *gorm.DB
	switch scope {
	case ScopeAgent:
		result = r.db.Where("agent_id = ? AND setting_id = ?", ownerID, setting.ID).Delete(&models.AgentSetting{})
	case ScopeUser:
		result = r.db.Where("user_id = ? AND setting_id = ?", ownerID, setting.ID).Delete(&models.UserSetting{})
	default:
		return fmt.Errorf("unknown override scope %q", scope)
	}
	if result.Error != nil {
		return fmt.Errorf("failed to delete override: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := WriteAuditEvent(r.db, ctx, models.AuditActionDelete,
		"SettingOverride", setting.ID, settingCacheKey(categoryKey, key),
		fmt.Sprintf("%s override removed for %s", scope, ownerID),
		nil, nil,
	); err != nil {
		log.Printf("[AUDIT] Failed to record override removal: %v", err)
	}

	r.Invalidate()
	return nil
}

// ListCategories returns all categories with their settings, ordered
// by position
func (r *SettingsRegistry) ListCategories() ([]models.SettingsCategory, error) {
	var categories []models.SettingsCategory
	err := r.db.Preload("Settings").Order("position ASC").Find(&categories).Error
	return categories, err
}

// seedSetting is a default setting definition installed at startup
type seedSetting struct {
	Key          string
	ValueType    string
	DefaultValue string
	Description  string
}

var defaultSettings = map[string]struct {
	Label    string
	Position int
	Settings []seedSetting
}{
	"funding": {
		Label:    "Funding",
		Position: 1,
		Settings: []seedSetting{
			{Key: "max_advance_cents", ValueType: models.SettingTypeInteger, DefaultValue: "2500000", Description: "Maximum advance per case, in cents"},
			{Key: "default_fee_basis_points", ValueType: models.SettingTypeFloat, DefaultValue: "350", Description: "Default funding fee in basis points per compounding period"},
			{Key: "require_retainer_document", ValueType: models.SettingTypeBoolean, DefaultValue: "true", Description: "Require a retainer document before approval"},
		},
	},
	"communications": {
		Label:    "Communications",
		Position: 2,
		Settings: []seedSetting{
			{Key: "email_signature", ValueType: models.SettingTypeString, DefaultValue: "The LexFund Team", Description: "Signature appended to outbound email"},
			{Key: "sms_enabled", ValueType: models.SettingTypeBoolean, DefaultValue: "true", Description: "Allow outbound SMS"},
			{Key: "followup_days", ValueType: models.SettingTypeJSON, DefaultValue: "[3, 7, 14]", Description: "Days after application to follow up"},
		},
	},
	"intake": {
		Label:    "Intake",
		Position: 3,
		Settings: []seedSetting{
			{Key: "auto_assign", ValueType: models.SettingTypeBoolean, DefaultValue: "false", Description: "Assign new cases to the intake agent automatically"},
			{Key: "default_case_type", ValueType: models.SettingTypeString, DefaultValue: models.CaseTypeAutoAccident, Description: "Pre-selected case type for new applications"},
		},
	},
}

// Seed installs the default categories and settings. Existing rows are
// left untouched, so it is safe to run at every startup.
func (r *SettingsRegistry) Seed() error {
	for categoryKey, def := range defaultSettings {
		var category models.SettingsCategory
		err := r.db.Where("key = ?", categoryKey).First(&category).Error
		if err == gorm.ErrRecordNotFound {
			category = models.SettingsCategory{Key: categoryKey, Label: def.Label, Position: def.Position}
			if err := r.db.Create(&category).Error; err != nil {
				return fmt.Errorf("failed to seed category %s: %w", categoryKey, err)
			}
		} else if err != nil {
			return err
		}

		for _, s := range def.Settings {
			var existing models.Setting
			err := r.db.Where("category_id = ? AND key = ?", category.ID, s.Key).First(&existing).Error
			if err == gorm.ErrRecordNotFound {
				setting := models.Setting{
					CategoryID:   category.ID,
					Key:          s.Key,
					Value:        s.DefaultValue,
					ValueType:    s.ValueType,
					DefaultValue: s.DefaultValue,
					Description:  s.Description,
				}
				if err := r.db.Create(&setting).Error; err != nil {
					return fmt.Errorf("failed to seed setting %s.%s: %w", categoryKey, s.Key, err)
				}
			} else if err != nil {
				return err
			}
		}
	}

	r.Invalidate()
	log.Println("Settings registry seeded")
	return nil
}
