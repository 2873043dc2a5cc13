package ci

import (
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lynxkit/forge/internal/descriptor"
)

const (
	appNameParameterKeyConstant        = "app_name"
	bundleIdentifierParameterKey       = "bundle_id"
	bundleURLParameterKeyConstant      = "lynx_bundle_url"
	payloadDecodeErrorTemplateConstant = "unable to decode trigger payload: %w"
	requiredParameterMessageConstant   = "required value is empty"
	bundleFormatMessageConstant        = "must be a reverse-domain identifier"
	bundleURLSchemeMessageConstant     = "must be an http or https URL"
	httpSchemeConstant                 = "http"
	httpsSchemeConstant                = "https"
)

// TriggerParameters is the normalized parameter set accepted by the CI entry
// point. Platform booleans default to true when the payload omits them.
type TriggerParameters struct {
	AppName          string `yaml:"app_name"`
	BundleIdentifier string `yaml:"bundle_id"`
	LynxBundleURL    string `yaml:"lynx_bundle_url"`
	IOSTeamID        string `yaml:"ios_team_id,omitempty"`
	BuildAndroid     bool   `yaml:"build_android"`
	BuildIOS         bool   `yaml:"build_ios"`
}

// triggerPayload mirrors TriggerParameters with optional booleans so absent
// keys can be told apart from explicit false.
type triggerPayload struct {
	AppName          string `yaml:"app_name"`
	BundleIdentifier string `yaml:"bundle_id"`
	LynxBundleURL    string `yaml:"lynx_bundle_url"`
	IOSTeamID        string `yaml:"ios_team_id"`
	BuildAndroid     *bool  `yaml:"build_android"`
	BuildIOS         *bool  `yaml:"build_ios"`
}

// ParsePayload decodes a YAML trigger payload into normalized parameters.
func ParsePayload(payloadData []byte) (TriggerParameters, error) {
	payload := triggerPayload{}
	if decodeError := yaml.Unmarshal(payloadData, &payload); decodeError != nil {
		return TriggerParameters{}, fmt.Errorf(payloadDecodeErrorTemplateConstant, decodeError)
	}

	parameters := TriggerParameters{
		AppName:          strings.TrimSpace(payload.AppName),
		BundleIdentifier: strings.TrimSpace(payload.BundleIdentifier),
		LynxBundleURL:    strings.TrimSpace(payload.LynxBundleURL),
		IOSTeamID:        strings.TrimSpace(payload.IOSTeamID),
		BuildAndroid:     true,
		BuildIOS:         true,
	}
	if payload.BuildAndroid != nil {
		parameters.BuildAndroid = *payload.BuildAndroid
	}
	if payload.BuildIOS != nil {
		parameters.BuildIOS = *payload.BuildIOS
	}

	return parameters, nil
}

// Validate checks the parameter set before any job planning happens.
func (parameters TriggerParameters) Validate() error {
	if len(strings.TrimSpace(parameters.AppName)) == 0 {
		return descriptor.ValidationError{FieldName: appNameParameterKeyConstant, Message: requiredParameterMessageConstant}
	}
	if len(strings.TrimSpace(parameters.BundleIdentifier)) == 0 {
		return descriptor.ValidationError{FieldName: bundleIdentifierParameterKey, Message: requiredParameterMessageConstant}
	}
	if !descriptor.IsValidBundleIdentifier(strings.TrimSpace(parameters.BundleIdentifier)) {
		return descriptor.ValidationError{FieldName: bundleIdentifierParameterKey, Message: bundleFormatMessageConstant}
	}
	if len(strings.TrimSpace(parameters.LynxBundleURL)) == 0 {
		return descriptor.ValidationError{FieldName: bundleURLParameterKeyConstant, Message: requiredParameterMessageConstant}
	}

	parsedURL, parseError := url.Parse(strings.TrimSpace(parameters.LynxBundleURL))
	if parseError != nil || (parsedURL.Scheme != httpSchemeConstant && parsedURL.Scheme != httpsSchemeConstant) || len(parsedURL.Host) == 0 {
		return descriptor.ValidationError{FieldName: bundleURLParameterKeyConstant, Message: bundleURLSchemeMessageConstant}
	}

	return nil
}
