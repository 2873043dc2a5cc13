package substitution

import (
	"strings"
)

const (
	legacyProductTokenConstant       = "LynxTemplate"
	legacyThemeTokenConstant         = "Theme.LynxTemplate"
	legacyPackageTokenConstant       = "com.lynxtemplate"
	legacyThemeReplacementPrefix     = "Theme."
	placeholderOrganizationConstant  = "__ORG__"
	placeholderAppNameConstant       = "__APP_NAME__"
	placeholderBundleIDConstant      = "__BUNDLE_ID__"
	placeholderTemplateRefConstant   = "__TEMPLATE_REF__"
	placeholderTeamIDConstant        = "__TEAM_ID__"
	vocabularyLegacyStringConstant   = "legacy"
	vocabularyPlaceholderStrConstant = "placeholder"
)

// Vocabulary tags the token set a ruleset belongs to.
type Vocabulary string

// Supported vocabularies.
const (
	// VocabularyLegacy covers the bare product tokens baked into an instantiated scaffold.
	VocabularyLegacy Vocabulary = Vocabulary(vocabularyLegacyStringConstant)
	// VocabularyPlaceholder covers the __TOKEN__ markers used by template store files.
	VocabularyPlaceholder Vocabulary = Vocabulary(vocabularyPlaceholderStrConstant)
)

// Rule maps a literal token to its replacement.
type Rule struct {
	Token       string
	Replacement string
}

// Ruleset is an ordered token vocabulary applied by the substitution engine.
// Rules are matched case-sensitively, leftmost-first, without overlapping; rule
// order decides precedence when one token prefixes another.
type Ruleset struct {
	Vocabulary Vocabulary
	rules      []Rule
	replacer   *strings.Replacer
}

// NewRuleset builds a ruleset from ordered rules.
func NewRuleset(vocabulary Vocabulary, rules []Rule) Ruleset {
	duplicatedRules := make([]Rule, len(rules))
	copy(duplicatedRules, rules)

	replacerArguments := make([]string, 0, len(duplicatedRules)*2)
	for _, substitutionRule := range duplicatedRules {
		replacerArguments = append(replacerArguments, substitutionRule.Token, substitutionRule.Replacement)
	}

	return Ruleset{
		Vocabulary: vocabulary,
		rules:      duplicatedRules,
		replacer:   strings.NewReplacer(replacerArguments...),
	}
}

// LegacyRuleset maps the scaffold's baked-in product tokens onto the customer identity.
// The theme-prefixed token precedes the bare product token so precedence is explicit.
func LegacyRuleset(appName string, bundleIdentifier string) Ruleset {
	return NewRuleset(VocabularyLegacy, []Rule{
		{Token: legacyThemeTokenConstant, Replacement: legacyThemeReplacementPrefix + appName},
		{Token: legacyProductTokenConstant, Replacement: appName},
		{Token: legacyPackageTokenConstant, Replacement: bundleIdentifier},
	})
}

// PlaceholderRuleset maps the template store's __TOKEN__ markers onto descriptor values.
// Any other __X__ shaped token is left untouched.
func PlaceholderRuleset(organization string, appName string, bundleIdentifier string, templateRef string) Ruleset {
	return NewRuleset(VocabularyPlaceholder, []Rule{
		{Token: placeholderOrganizationConstant, Replacement: organization},
		{Token: placeholderAppNameConstant, Replacement: appName},
		{Token: placeholderBundleIDConstant, Replacement: bundleIdentifier},
		{Token: placeholderTemplateRefConstant, Replacement: templateRef},
	})
}

// TeamRuleset maps the signing-team marker onto the supplied team identifier.
// Kept separate from PlaceholderRuleset because the team identifier is
// optional and applied only during in-place setup.
func TeamRuleset(teamIdentifier string) Ruleset {
	return NewRuleset(VocabularyPlaceholder, []Rule{
		{Token: placeholderTeamIDConstant, Replacement: teamIdentifier},
	})
}

// Apply substitutes every token occurrence in the supplied text.
func (ruleset Ruleset) Apply(text string) string {
	if ruleset.replacer == nil {
		return text
	}
	return ruleset.replacer.Replace(text)
}

// ContainsToken reports whether any ruleset token remains in the supplied text.
func (ruleset Ruleset) ContainsToken(text string) bool {
	for _, substitutionRule := range ruleset.rules {
		if strings.Contains(text, substitutionRule.Token) {
			return true
		}
	}
	return false
}

// Tokens lists the ruleset tokens in precedence order.
func (ruleset Ruleset) Tokens() []string {
	tokens := make([]string, 0, len(ruleset.rules))
	for _, substitutionRule := range ruleset.rules {
		tokens = append(tokens, substitutionRule.Token)
	}
	return tokens
}
