package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Geo codes are upper-case alphanumeric segments joined by hyphens: "AS", "VN", "VN-N", "VN-HN-01".
var geoCodeRegex = regexp.MustCompile(`^[A-Z0-9]+(-[A-Z0-9]+)*$`)

// Permission codes are dotted lower-case segments: "article.publish", "media.delete".
var permissionCodeRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)+$`)

const (
	maxGeoCodeLength        = 16
	maxPermissionCodeLength = 64
)

// NameTag is the validate tag of every display name.
const NameTag = "notblank,max=255"

// ValidateGeoCode validates the code of a continent, country, region, district or ward.
func ValidateGeoCode(code string) error {
	if code == "" {
		return fmt.Errorf("code is required")
	}
	if len(code) > maxGeoCodeLength {
		return fmt.Errorf("code must not exceed %d characters", maxGeoCodeLength)
	}
	if !geoCodeRegex.MatchString(code) {
		return fmt.Errorf("code must contain only upper-case letters, digits and inner hyphens")
	}
	return nil
}

// ValidatePermissionCode validates a permission code.
func ValidatePermissionCode(code string) error {
	if len(code) > maxPermissionCodeLength {
		return fmt.Errorf("permission code must not exceed %d characters", maxPermissionCodeLength)
	}
	if !permissionCodeRegex.MatchString(code) {
		return fmt.Errorf("permission code must look like resource.action")
	}
	return nil
}

// ValidateName requires a non-blank display name of bounded length.
func ValidateName(field, name string) error {
	return Var(field, strings.TrimSpace(name), NameTag)
}
