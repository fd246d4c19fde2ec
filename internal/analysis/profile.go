package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	ProfileHeader    = "User Health Profile:"
	NoProfileMessage = "No health profile provided."
)

// HealthProfile is the free-form profile record sent by clients. Every key is
// optional and list-like fields may arrive either as arrays or plain strings.
type HealthProfile map[string]any

type profileFieldKind int

const (
	profileText profileFieldKind = iota
	profileList
	profileFlag
)

type profileField struct {
	key   string
	label string
	kind  profileFieldKind
}

// Rendering order is part of the output contract.
var profileFields = []profileField{
	{key: "name", label: "Name", kind: profileText},
	{key: "age", label: "Age", kind: profileText},
	{key: "gender", label: "Gender", kind: profileText},
	{key: "state", label: "State", kind: profileText},
	{key: "medical_conditions", label: "Medical Conditions", kind: profileList},
	{key: "medications", label: "Current Medications", kind: profileList},
	{key: "family_history", label: "Family History", kind: profileList},
	{key: "known_diseases", label: "Known Diseases", kind: profileList},
	{key: "smoker", label: "Smoker", kind: profileFlag},
	{key: "drinker", label: "Drinks Alcohol", kind: profileFlag},
	{key: "exercise_habits", label: "Exercise Habits", kind: profileList},
	{key: "allergies", label: "Allergies", kind: profileList},
}

// DecodeProfile accepts either a JSON object or a JSON string holding an
// encoded object. The second return is false when nothing usable was found.
func DecodeProfile(raw json.RawMessage) (HealthProfile, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, false
	}
	if strings.HasPrefix(trimmed, `"`) {
		var encoded string
		if err := json.Unmarshal([]byte(trimmed), &encoded); err != nil {
			return nil, false
		}
		trimmed = strings.TrimSpace(encoded)
	}
	var profile HealthProfile
	if err := json.Unmarshal([]byte(trimmed), &profile); err != nil || profile == nil {
		return nil, false
	}
	return profile, true
}

func BuildProfileContext(profile HealthProfile) string {
	lines := make([]string, 0, len(profileFields)+1)
	lines = append(lines, ProfileHeader)
	for _, field := range profileFields {
		value, ok := profile[field.key]
		if !ok {
			continue
		}
		rendered := renderProfileValue(value, field.kind)
		if rendered == "" {
			continue
		}
		lines = append(lines, "- "+field.label+": "+rendered)
	}
	if len(lines) == 1 {
		return NoProfileMessage
	}
	return strings.Join(lines, "\n")
}

func renderProfileValue(value any, kind profileFieldKind) string {
	switch kind {
	case profileFlag:
		if b, ok := value.(bool); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
		return scalarString(value)
	case profileList:
		if items, ok := value.([]any); ok {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				if s := scalarString(item); s != "" {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, ", ")
		}
		return scalarString(value)
	default:
		return scalarString(value)
	}
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case []any:
		return renderProfileValue(v, profileList)
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
