package entity

import (
	"strconv"
	"strings"
)

type DescriptorKind int8

const (
	DescriptorExplicit DescriptorKind = iota + 1
	DescriptorAssignee
	DescriptorManager
	DescriptorRole
)

// Descriptor is a parsed recipient descriptor. UserID is set for
// DescriptorExplicit, Role for DescriptorRole.
type Descriptor struct {
	Kind   DescriptorKind
	UserID int64
	Role   string
}

// ParseDescriptor accepts "user:<id>", a bare positive id, "assignee",
// "manager", "manager-of-unit" and "role:<name>". Keywords are case
// insensitive; role names are kept as written.
func ParseDescriptor(raw string) (Descriptor, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Descriptor{}, &InvalidDescriptorError{Raw: raw, Reason: "empty descriptor"}
	}

	switch strings.ToLower(s) {
	case "assignee":
		return Descriptor{Kind: DescriptorAssignee}, nil
	case "manager", "manager-of-unit":
		return Descriptor{Kind: DescriptorManager}, nil
	}

	prefix, value, found := strings.Cut(s, ":")
	if !found {
		id, err := parseUserID(s)
		if err != nil {
			return Descriptor{}, &InvalidDescriptorError{Raw: raw, Reason: "unknown descriptor"}
		}
		return Descriptor{Kind: DescriptorExplicit, UserID: id}, nil
	}

	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(prefix)) {
	case "user":
		id, err := parseUserID(value)
		if err != nil {
			return Descriptor{}, &InvalidDescriptorError{Raw: raw, Reason: "user id must be a positive integer"}
		}
		return Descriptor{Kind: DescriptorExplicit, UserID: id}, nil
	case "role":
		if value == "" {
			return Descriptor{}, &InvalidDescriptorError{Raw: raw, Reason: "role name is empty"}
		}
		return Descriptor{Kind: DescriptorRole, Role: value}, nil
	default:
		return Descriptor{}, &InvalidDescriptorError{Raw: raw, Reason: "unknown descriptor prefix"}
	}
}

func parseUserID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

func (d Descriptor) String() string {
	switch d.Kind {
	case DescriptorExplicit:
		return "user:" + strconv.FormatInt(d.UserID, 10)
	case DescriptorAssignee:
		return "assignee"
	case DescriptorManager:
		return "manager-of-unit"
	case DescriptorRole:
		return "role:" + d.Role
	default:
		return "unknown"
	}
}
