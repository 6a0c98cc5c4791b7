package tokenauth

import (
	"sort"
	"strings"
)

// BuildScope derives the authorization scope string embedded in a token:
// roles sorted by name, each emitting "ROLE_<name>" followed by its
// permission names sorted by name, all joined with single spaces. Sorting
// makes the output independent of input ordering, so the same role graph
// always signs the same bytes. An empty role set yields "".
func BuildScope(roles []RoleRef) string {
	if len(roles) == 0 {
		return ""
	}

	sorted := make([]RoleRef, len(roles))
	copy(sorted, roles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for _, role := range sorted {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("ROLE_")
		b.WriteString(role.Name)

		perms := make([]string, 0, len(role.Permissions))
		for _, p := range role.Permissions {
			perms = append(perms, p.Name)
		}
		sort.Strings(perms)

		for _, name := range perms {
			b.WriteByte(' ')
			b.WriteString(name)
		}
	}

	return b.String()
}
