package templates

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lynxkit/forge/internal/substitution"
)

const (
	templateSuffixConstant                 = ".tmpl"
	gitDirectoryNameConstant               = ".git"
	storeMissingMessageConstant            = "template store not found; nothing to render"
	storeNotDirectoryTemplateConstant      = "template store path is not a directory: %s"
	storeInspectErrorTemplateConstant      = "unable to inspect template store: %w"
	templateReadErrorTemplateConstant      = "unable to read template file %s: %w"
	renderedWriteErrorTemplateConstant     = "unable to write rendered template %s: %w"
	renderedDirectoryErrorTemplateConstant = "unable to create rendered directory %s: %w"
	residualTokenErrorTemplateConstant     = "rendered template %s still contains token %s"
	renderedCollisionTemplateConstant      = "rendered template target already exists: %s"
	storeRootLogFieldConstant              = "store_root"
	renderedFileLogFieldConstant           = "rendered_file"
	renderedCountLogFieldConstant          = "rendered_templates"
	templateRenderedLogMessageConstant     = "Rendered template"
	renderCompletionLogMessageConstant     = "Template store rendering completed"
)

// ResidualTokenError reports a placeholder that survived rendering.
type ResidualTokenError struct {
	RenderedPath string
	Token        string
}

// Error describes the leftover token.
func (residualError ResidualTokenError) Error() string {
	return fmt.Sprintf(residualTokenErrorTemplateConstant, residualError.RenderedPath, residualError.Token)
}

// Renderer renders *.tmpl files from the template store into a target tree,
// stripping the .tmpl suffix and substituting placeholder tokens in both path
// and contents. Files without the suffix are ignored; the store is never
// modified.
type Renderer struct {
	logger *zap.Logger
}

// NewRenderer constructs a Renderer with the provided logger.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger}
}

// RenderStore renders every template beneath storeRoot into targetRoot.
func (renderer *Renderer) RenderStore(executionContext context.Context, storeRoot string, targetRoot string, ruleset substitution.Ruleset) error {
	storeInfo, statError := os.Stat(storeRoot)
	if statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			renderer.logger.Info(storeMissingMessageConstant, zap.String(storeRootLogFieldConstant, storeRoot))
			return nil
		}
		return fmt.Errorf(storeInspectErrorTemplateConstant, statError)
	}
	if !storeInfo.IsDir() {
		return fmt.Errorf(storeNotDirectoryTemplateConstant, storeRoot)
	}

	renderedTemplateCount := 0

	walkError := filepath.WalkDir(storeRoot, func(templatePath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if directoryEntry.IsDir() {
			if directoryEntry.Name() == gitDirectoryNameConstant {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.Type().IsRegular() {
			return nil
		}
		if !strings.HasSuffix(directoryEntry.Name(), templateSuffixConstant) {
			return nil
		}

		renderError := renderer.renderTemplate(storeRoot, targetRoot, templatePath, ruleset)
		if renderError != nil {
			return renderError
		}
		renderedTemplateCount++
		return nil
	})
	if walkError != nil {
		return walkError
	}

	renderer.logger.Info(renderCompletionLogMessageConstant,
		zap.String(storeRootLogFieldConstant, storeRoot),
		zap.Int(renderedCountLogFieldConstant, renderedTemplateCount),
	)
	return nil
}

func (renderer *Renderer) renderTemplate(storeRoot string, targetRoot string, templatePath string, ruleset substitution.Ruleset) error {
	relativePath, relativeError := filepath.Rel(storeRoot, templatePath)
	if relativeError != nil {
		return relativeError
	}

	renderedRelativePath := ruleset.Apply(strings.TrimSuffix(relativePath, templateSuffixConstant))
	renderedPath := filepath.Join(targetRoot, renderedRelativePath)

	templateContent, readError := os.ReadFile(templatePath)
	if readError != nil {
		return fmt.Errorf(templateReadErrorTemplateConstant, templatePath, readError)
	}

	renderedContent := templateContent
	if !substitution.IsBinaryContent(templateContent) {
		renderedContent = []byte(ruleset.Apply(string(templateContent)))
		if residualError := verifyNoResidualTokens(renderedRelativePath, string(renderedContent), ruleset); residualError != nil {
			return residualError
		}
	}

	if _, targetStatError := os.Lstat(renderedPath); targetStatError == nil {
		return substitution.CollisionError{TargetPath: renderedPath}
	}

	templateInfo, statError := os.Stat(templatePath)
	if statError != nil {
		return fmt.Errorf(templateReadErrorTemplateConstant, templatePath, statError)
	}

	if mkdirError := os.MkdirAll(filepath.Dir(renderedPath), 0o755); mkdirError != nil {
		return fmt.Errorf(renderedDirectoryErrorTemplateConstant, filepath.Dir(renderedPath), mkdirError)
	}
	if writeError := os.WriteFile(renderedPath, renderedContent, templateInfo.Mode().Perm()); writeError != nil {
		return fmt.Errorf(renderedWriteErrorTemplateConstant, renderedPath, writeError)
	}

	renderer.logger.Debug(templateRenderedLogMessageConstant, zap.String(renderedFileLogFieldConstant, renderedPath))
	return nil
}

func verifyNoResidualTokens(renderedRelativePath string, renderedContent string, ruleset substitution.Ruleset) error {
	for _, token := range ruleset.Tokens() {
		if strings.Contains(renderedRelativePath, token) || strings.Contains(renderedContent, token) {
			return ResidualTokenError{RenderedPath: renderedRelativePath, Token: token}
		}
	}
	return nil
}
