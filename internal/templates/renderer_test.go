package templates_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lynxkit/forge/internal/substitution"
	"github.com/lynxkit/forge/internal/templates"
)

const (
	testOrganizationValueConstant     = "acme-mobile"
	testAppNameValueConstant          = "AcmeApp"
	testBundleIdentifierValueConstant = "com.acme.shop"
	testTemplateRefValueConstant      = "v2"
	testWorkflowTemplateNameConstant  = "build.yml.tmpl"
	testWorkflowRenderedNameConstant  = "build.yml"
	testWorkflowTemplateBodyConstant  = "app: __APP_NAME__\nbundle: __BUNDLE_ID__\nref: __TEMPLATE_REF__\norg: __ORG__\n"
	testWorkflowRenderedBodyConstant  = "app: AcmeApp\nbundle: com.acme.shop\nref: v2\norg: acme-mobile\n"
	testPlainStoreFileNameConstant    = "README.md"
	testPlainStoreFileBodyConstant    = "# template store"
	testNamedTemplateNameConstant     = "__APP_NAME__.entitlements.tmpl"
	testNamedRenderedNameConstant     = "AcmeApp.entitlements"
)

func testPlaceholderRuleset() substitution.Ruleset {
	return substitution.PlaceholderRuleset(testOrganizationValueConstant, testAppNameValueConstant, testBundleIdentifierValueConstant, testTemplateRefValueConstant)
}

func writeStoreFile(testInstance *testing.T, filePath string, contents string) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(testInstance, os.WriteFile(filePath, []byte(contents), 0o644))
}

func TestRenderStoreRendersTemplates(testInstance *testing.T) {
	storeRoot := testInstance.TempDir()
	targetRoot := testInstance.TempDir()

	writeStoreFile(testInstance, filepath.Join(storeRoot, ".github", "workflows", testWorkflowTemplateNameConstant), testWorkflowTemplateBodyConstant)
	writeStoreFile(testInstance, filepath.Join(storeRoot, testNamedTemplateNameConstant), testWorkflowTemplateBodyConstant)
	writeStoreFile(testInstance, filepath.Join(storeRoot, testPlainStoreFileNameConstant), testPlainStoreFileBodyConstant)

	renderer := templates.NewRenderer(zap.NewNop())
	require.NoError(testInstance, renderer.RenderStore(context.Background(), storeRoot, targetRoot, testPlaceholderRuleset()))

	renderedWorkflow, workflowReadError := os.ReadFile(filepath.Join(targetRoot, ".github", "workflows", testWorkflowRenderedNameConstant))
	require.NoError(testInstance, workflowReadError)
	require.Equal(testInstance, testWorkflowRenderedBodyConstant, string(renderedWorkflow))

	_, namedStatError := os.Stat(filepath.Join(targetRoot, testNamedRenderedNameConstant))
	require.NoError(testInstance, namedStatError)

	_, plainStatError := os.Stat(filepath.Join(targetRoot, testPlainStoreFileNameConstant))
	require.True(testInstance, os.IsNotExist(plainStatError))
}

func TestRenderStoreFailsOnResidualToken(testInstance *testing.T) {
	storeRoot := testInstance.TempDir()
	targetRoot := testInstance.TempDir()

	writeStoreFile(testInstance, filepath.Join(storeRoot, testWorkflowTemplateNameConstant), testWorkflowTemplateBodyConstant)

	// A replacement that reintroduces its own token trips the totality check.
	selfReferentialRuleset := substitution.NewRuleset(substitution.VocabularyPlaceholder, []substitution.Rule{
		{Token: "__BUNDLE_ID__", Replacement: "__BUNDLE_ID__"},
	})

	renderer := templates.NewRenderer(zap.NewNop())
	residualError := renderer.RenderStore(context.Background(), storeRoot, targetRoot, selfReferentialRuleset)

	require.Error(testInstance, residualError)
	tokenError := templates.ResidualTokenError{}
	require.ErrorAs(testInstance, residualError, &tokenError)
}

func TestRenderStoreFailsOnCollision(testInstance *testing.T) {
	storeRoot := testInstance.TempDir()
	targetRoot := testInstance.TempDir()

	writeStoreFile(testInstance, filepath.Join(storeRoot, testWorkflowTemplateNameConstant), testWorkflowTemplateBodyConstant)
	writeStoreFile(testInstance, filepath.Join(targetRoot, testWorkflowRenderedNameConstant), testPlainStoreFileBodyConstant)

	renderer := templates.NewRenderer(zap.NewNop())
	renderError := renderer.RenderStore(context.Background(), storeRoot, targetRoot, testPlaceholderRuleset())

	require.Error(testInstance, renderError)
	collisionError := substitution.CollisionError{}
	require.ErrorAs(testInstance, renderError, &collisionError)
}

func TestRenderStoreMissingStoreIsNotAnError(testInstance *testing.T) {
	renderer := templates.NewRenderer(zap.NewNop())
	missingStoreRoot := filepath.Join(testInstance.TempDir(), "does-not-exist")

	require.NoError(testInstance, renderer.RenderStore(context.Background(), missingStoreRoot, testInstance.TempDir(), testPlaceholderRuleset()))
}
