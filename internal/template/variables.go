// internal/template/variables.go
package template

import (
    "regexp"
    "sort"
    "strconv"
    "strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\d+\}\}`)

// VariableMapping binds one template placeholder to a contact field or a
// fixed value chosen in the campaign builder.
type VariableMapping struct {
    Variable    string `json:"variable"`
    Source      string `json:"source"` // name, phone, email, custom
    CustomValue string `json:"custom_value,omitempty"`
}

// ContactData is the substitution source for a single recipient.
type ContactData struct {
    Name  string
    Phone string
    Email string
}

func placeholderIndex(token string) int {
    n, _ := strconv.Atoi(strings.Trim(token, "{}"))
    return n
}

// ExtractVariables returns the distinct {{N}} placeholders present in the
// template body, sorted ascending by N. The order matches the order the
// Cloud API expects positional body parameters in.
func ExtractVariables(body string) []string {
    matches := placeholderPattern.FindAllString(body, -1)

    seen := make(map[string]bool)
    unique := []string{}
    for _, m := range matches {
        if !seen[m] {
            seen[m] = true
            unique = append(unique, m)
        }
    }

    sort.Slice(unique, func(i, j int) bool {
        return placeholderIndex(unique[i]) < placeholderIndex(unique[j])
    })

    return unique
}

func mappingValue(m VariableMapping, contact ContactData) string {
    switch m.Source {
    case "name":
        return contact.Name
    case "phone":
        return contact.Phone
    case "email":
        return contact.Email
    case "custom":
        return m.CustomValue
    default:
        return ""
    }
}

// ResolveVariables produces the ordered substitution values for one contact.
// Placeholders without a mapping fall back to the contact name for {{1}} and
// to an empty string for everything else.
func ResolveVariables(body string, mappings []VariableMapping, contact ContactData) []string {
    variables := ExtractVariables(body)

    values := make([]string, 0, len(variables))
    for _, variable := range variables {
        resolved := ""
        mapped := false
        for _, m := range mappings {
            if m.Variable == variable {
                resolved = mappingValue(m, contact)
                mapped = true
                break
            }
        }
        if !mapped && placeholderIndex(variable) == 1 {
            resolved = contact.Name
        }
        values = append(values, resolved)
    }

    return values
}
