package descriptor

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	appNamePatternConstant          = `^[A-Za-z][A-Za-z0-9]*$`
	bundleIdentifierPatternConstant = `^[a-z][a-z0-9]*(\.[a-z][a-z0-9]*)+$`
	customerSlugPatternConstant     = `^[a-z][a-z0-9-]*$`
	organizationFieldNameConstant   = "organization"
	customerSlugFieldNameConstant   = "customer"
	appNameFieldNameConstant        = "app_name"
	bundleIdentifierFieldConstant   = "bundle_id"
	requiredValueMessageConstant    = "value required"
	appNameFormatMessageConstant    = "must start with a letter and contain only letters and digits"
	bundleFormatMessageConstant     = "must be a lowercase reverse-domain identifier such as com.acme.shop"
	slugFormatMessageConstant       = "must be lowercase letters, digits, or hyphens and start with a letter"
	validationErrorTemplateConstant = "%s: %s"
	repositoryNameTemplateConstant  = "%s-%s"
	defaultTemplateRefConstant      = "master"
)

var (
	appNameExpression          = regexp.MustCompile(appNamePatternConstant)
	bundleIdentifierExpression = regexp.MustCompile(bundleIdentifierPatternConstant)
	customerSlugExpression     = regexp.MustCompile(customerSlugPatternConstant)
)

// ValidationError reports a descriptor field that failed format validation.
type ValidationError struct {
	FieldName string
	Message   string
}

// Error describes the invalid field.
func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, validationError.FieldName, validationError.Message)
}

// CustomerDescriptor captures the identity of a provisioned customer application.
type CustomerDescriptor struct {
	Organization     string
	CustomerSlug     string
	AppName          string
	BundleIdentifier string
	TemplateRef      string
}

// DefaultTemplateRef returns the template reference used when none is supplied.
func DefaultTemplateRef() string {
	return defaultTemplateRefConstant
}

// Normalize trims descriptor fields and applies the default template reference.
func (customerDescriptor CustomerDescriptor) Normalize() CustomerDescriptor {
	normalized := CustomerDescriptor{
		Organization:     strings.TrimSpace(customerDescriptor.Organization),
		CustomerSlug:     strings.TrimSpace(customerDescriptor.CustomerSlug),
		AppName:          strings.TrimSpace(customerDescriptor.AppName),
		BundleIdentifier: strings.TrimSpace(customerDescriptor.BundleIdentifier),
		TemplateRef:      strings.TrimSpace(customerDescriptor.TemplateRef),
	}
	if len(normalized.TemplateRef) == 0 {
		normalized.TemplateRef = defaultTemplateRefConstant
	}
	return normalized
}

// Validate checks every descriptor field against its required format.
func (customerDescriptor CustomerDescriptor) Validate() error {
	if len(customerDescriptor.Organization) == 0 {
		return ValidationError{FieldName: organizationFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(customerDescriptor.CustomerSlug) == 0 {
		return ValidationError{FieldName: customerSlugFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if !customerSlugExpression.MatchString(customerDescriptor.CustomerSlug) {
		return ValidationError{FieldName: customerSlugFieldNameConstant, Message: slugFormatMessageConstant}
	}
	if len(customerDescriptor.AppName) == 0 {
		return ValidationError{FieldName: appNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if !appNameExpression.MatchString(customerDescriptor.AppName) {
		return ValidationError{FieldName: appNameFieldNameConstant, Message: appNameFormatMessageConstant}
	}
	if len(customerDescriptor.BundleIdentifier) == 0 {
		return ValidationError{FieldName: bundleIdentifierFieldConstant, Message: requiredValueMessageConstant}
	}
	if !bundleIdentifierExpression.MatchString(customerDescriptor.BundleIdentifier) {
		return ValidationError{FieldName: bundleIdentifierFieldConstant, Message: bundleFormatMessageConstant}
	}
	return nil
}

// RepositoryName derives the remote repository name from the customer slug and lowercased app name.
func (customerDescriptor CustomerDescriptor) RepositoryName() string {
	return fmt.Sprintf(repositoryNameTemplateConstant, customerDescriptor.CustomerSlug, strings.ToLower(customerDescriptor.AppName))
}

// ValidateAppNameAndBundle checks only the fields required for in-place setup.
func ValidateAppNameAndBundle(appName string, bundleIdentifier string) error {
	if len(strings.TrimSpace(appName)) == 0 {
		return ValidationError{FieldName: appNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if !appNameExpression.MatchString(strings.TrimSpace(appName)) {
		return ValidationError{FieldName: appNameFieldNameConstant, Message: appNameFormatMessageConstant}
	}
	if len(strings.TrimSpace(bundleIdentifier)) == 0 {
		return ValidationError{FieldName: bundleIdentifierFieldConstant, Message: requiredValueMessageConstant}
	}
	if !bundleIdentifierExpression.MatchString(strings.TrimSpace(bundleIdentifier)) {
		return ValidationError{FieldName: bundleIdentifierFieldConstant, Message: bundleFormatMessageConstant}
	}
	return nil
}

// IsValidBundleIdentifier reports whether the supplied value matches the reverse-domain format.
func IsValidBundleIdentifier(bundleIdentifier string) bool {
	return bundleIdentifierExpression.MatchString(bundleIdentifier)
}
