package inference

import (
	"regexp"
	"sort"
	"strings"

	"api-test-planner/internal/models"
)

// State rule patterns. Group 1 is the action verb, group 2 the status value.
var (
	// "can only be cancelled if status is 'pending'"
	allowedStateRe = regexp.MustCompile(`(?:can\s+only\s+be\s+)?(\w+(?:ed|led)?)\s+(?:if|when)\s+(?:the\s+)?status\s+(?:is|=|==)\s+['"]?(\w+)['"]?`)
	// "cannot cancel if shipped"
	blockedStateRe = regexp.MustCompile(`cannot\s+(\w+)\s+(?:if|when)\s+(?:the\s+)?(?:status\s+(?:is|=)\s+)?['"]?(\w+)['"]?`)

	// Inflection suffix stripped to get an action stem: cancelled→cancel.
	actionSuffixRe = regexp.MustCompile(`(ed|led|d)$`)
)

// Role patterns. Group 1 is the role; group 2 (when present) the action.
var rolePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\w+)\s+(?:users?\s+)?can\s+(?:only\s+)?(\w+)`), // "admin users can delete"
	regexp.MustCompile(`(?:requires?\s+)(\w+)_auth`),                    // "requires admin_auth"
	regexp.MustCompile(`(\w+)\s+role\s+(?:is\s+)?required`),             // "admin role is required"
}

// knownRoles is the closed vocabulary of recognized role tokens, to
// avoid false positives on arbitrary nouns.
var knownRoles = map[string]bool{
	"user": true, "admin": true, "moderator": true, "manager": true,
	"editor": true, "viewer": true, "owner": true,
}

// verbMethods maps action verb stems to HTTP methods.
var verbMethods = map[string]string{
	"get":    "GET",
	"creat":  "POST",
	"updat":  "PUT",
	"delet":  "DELETE",
	"remov":  "DELETE",
	"cancel": "DELETE",
}

// Suffix stripped from role action verbs: creates→creat, deleted→delet.
var verbSuffixRe = regexp.MustCompile(`(e?s|ed|ing)$`)

// ExtractStateConstraints scans the requirements text for state-machine
// rules and attaches each to the first endpoint whose name or path
// matches the rule's action verb.
func ExtractStateConstraints(endpoints []*models.Endpoint, text string) {
	textLower := strings.ToLower(text)

	families := []struct {
		re      *regexp.Regexp
		blocked bool
	}{
		{allowedStateRe, false},
		{blockedStateRe, true},
	}

	for _, family := range families {
		for _, match := range family.re.FindAllStringSubmatch(textLower, -1) {
			value := strings.ToLower(match[2])
			constraint := models.StateConstraint{
				Field:       "status",
				Description: strings.TrimSpace(match[0]),
				ErrorCode:   409,
			}
			if family.blocked {
				constraint.BlockedValues = []string{value}
			} else {
				constraint.AllowedValues = []string{value}
			}

			action := strings.ToLower(match[1])
			for _, ep := range endpoints {
				keywords := strings.ToLower(ep.Name) + " " + strings.ToLower(ep.URLPath)
				if strings.Contains(keywords, action) || actionMatchesEndpoint(action, ep) {
					ep.AddStateConstraint(constraint)
					break
				}
			}
		}
	}
}

// actionMatchesEndpoint checks whether an inflected action verb matches
// an endpoint, e.g. "cancelled" matches DELETE /orders/:id/cancel.
func actionMatchesEndpoint(action string, ep *models.Endpoint) bool {
	stem := actionSuffixRe.ReplaceAllString(action, "")
	return strings.Contains(strings.ToLower(ep.URLPath), stem) ||
		strings.Contains(strings.ToLower(ep.Name), stem)
}

// ExtractRoles scans the requirements text for role restrictions and
// assigns roles to auth-requiring endpoints. When no action verb ties a
// role to a specific endpoint, every mentioned role is assigned as a
// conservative fallback.
func ExtractRoles(endpoints []*models.Endpoint, text string) {
	textLower := strings.ToLower(text)

	// role → action verbs, preserving first-mention order
	var roleOrder []string
	roleActions := make(map[string][]string)

	for _, re := range rolePatterns {
		for _, match := range re.FindAllStringSubmatch(textLower, -1) {
			role := strings.ToLower(match[1])
			if !knownRoles[role] {
				continue
			}
			if _, seen := roleActions[role]; !seen {
				roleOrder = append(roleOrder, role)
				roleActions[role] = nil
			}
			if len(match) >= 3 && match[2] != "" {
				roleActions[role] = append(roleActions[role], strings.ToLower(match[2]))
			}
		}
	}

	if len(roleOrder) == 0 {
		return
	}

	for _, ep := range endpoints {
		if !ep.RequiresAuth {
			continue
		}
		lowerName := strings.ToLower(ep.Name)
		lowerPath := strings.ToLower(ep.URLPath)

		matched := make(map[string]bool)
		for _, role := range roleOrder {
			for _, action := range roleActions[role] {
				stem := verbSuffixRe.ReplaceAllString(action, "")
				if strings.Contains(lowerName, stem) || strings.Contains(lowerPath, stem) {
					matched[role] = true
				} else if method, ok := verbMethods[stem]; ok && method == ep.Method {
					matched[role] = true
				}
			}
		}

		if len(matched) > 0 {
			roles := make([]string, 0, len(matched))
			for role := range matched {
				roles = append(roles, role)
			}
			sort.Strings(roles)
			ep.Roles = roles
		} else if len(ep.Roles) == 0 {
			// Default: all mentioned roles can access auth-required endpoints.
			ep.Roles = append([]string(nil), roleOrder...)
		}
	}
}
