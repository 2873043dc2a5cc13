package substitution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	gitDirectoryNameConstant             = ".git"
	binarySniffWindowSizeConstant        = 8000
	collisionErrorTemplateConstant       = "substitution target already exists: %s"
	sourceWalkErrorTemplateConstant      = "unable to walk source tree %s: %w"
	sourceReadErrorTemplateConstant      = "unable to read source file %s: %w"
	targetWriteErrorTemplateConstant     = "unable to write rendered file %s: %w"
	targetDirectoryErrorTemplateConstant = "unable to create target directory %s: %w"
	renameErrorTemplateConstant          = "unable to rename %s to %s: %w"
	rewriteErrorTemplateConstant         = "unable to rewrite %s: %w"
	statErrorTemplateConstant            = "unable to stat %s: %w"
	renderedFileLogMessageConstant       = "Rendered file"
	renamedPathLogMessageConstant        = "Renamed path"
	rewrittenFileLogMessageConstant      = "Rewrote file contents"
	binaryFileSkippedLogMessageConstant  = "Copied binary file without content substitution"
	sourcePathLogFieldConstant           = "source_path"
	targetPathLogFieldConstant           = "target_path"
	renderCompletionLogMessageConstant   = "Tree rendering completed"
	renameCompletionLogMessageConstant   = "Tree renaming completed"
	vocabularyLogFieldConstant           = "vocabulary"
	rootLogFieldConstant                 = "root"
	processedFileCountLogFieldConstant   = "processed_files"
)

// CollisionError reports a substitution output path that already exists.
type CollisionError struct {
	TargetPath string
}

// Error describes the collision.
func (collisionError CollisionError) Error() string {
	return fmt.Sprintf(collisionErrorTemplateConstant, collisionError.TargetPath)
}

// Engine performs token substitution over file trees, rewriting both file
// contents and path names. Binary files are copied verbatim so their payload
// is never garbled; their names still participate in renaming.
type Engine struct {
	logger *zap.Logger
}

// NewEngine constructs an Engine with the provided logger.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// RenderTree copies sourceRoot into targetRoot applying the ruleset to every
// relative path and every text file's contents. The source tree is never
// modified, so rendering the same pristine source twice is byte-identical.
func (engine *Engine) RenderTree(executionContext context.Context, sourceRoot string, targetRoot string, ruleset Ruleset) error {
	processedFileCount := 0

	walkError := filepath.WalkDir(sourceRoot, func(sourcePath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if directoryEntry.IsDir() && directoryEntry.Name() == gitDirectoryNameConstant {
			return filepath.SkipDir
		}

		relativePath, relativeError := filepath.Rel(sourceRoot, sourcePath)
		if relativeError != nil {
			return relativeError
		}
		targetPath := filepath.Join(targetRoot, ruleset.Apply(relativePath))

		if directoryEntry.IsDir() {
			directoryInfo, infoError := directoryEntry.Info()
			if infoError != nil {
				return fmt.Errorf(statErrorTemplateConstant, sourcePath, infoError)
			}
			if mkdirError := os.MkdirAll(targetPath, directoryInfo.Mode().Perm()); mkdirError != nil {
				return fmt.Errorf(targetDirectoryErrorTemplateConstant, targetPath, mkdirError)
			}
			return nil
		}
		if !directoryEntry.Type().IsRegular() {
			return nil
		}

		renderError := engine.renderFile(sourcePath, targetPath, ruleset)
		if renderError != nil {
			return renderError
		}
		processedFileCount++
		return nil
	})
	if walkError != nil {
		collisionError := CollisionError{}
		if errors.As(walkError, &collisionError) {
			return collisionError
		}
		return fmt.Errorf(sourceWalkErrorTemplateConstant, sourceRoot, walkError)
	}

	engine.logger.Info(renderCompletionLogMessageConstant,
		zap.String(vocabularyLogFieldConstant, string(ruleset.Vocabulary)),
		zap.String(rootLogFieldConstant, targetRoot),
		zap.Int(processedFileCountLogFieldConstant, processedFileCount),
	)
	return nil
}

// RenameTree applies the ruleset to a tree in place: file contents first, then
// path names deepest-first so children are renamed before their parents.
func (engine *Engine) RenameTree(executionContext context.Context, root string, ruleset Ruleset) error {
	renamablePaths := make([]string, 0)

	walkError := filepath.WalkDir(root, func(currentPath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return entryError
		}
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		if directoryEntry.IsDir() && directoryEntry.Name() == gitDirectoryNameConstant {
			return filepath.SkipDir
		}

		if directoryEntry.Type().IsRegular() {
			if rewriteError := engine.rewriteFileContents(currentPath, ruleset); rewriteError != nil {
				return rewriteError
			}
		}

		if currentPath != root && ruleset.ContainsToken(directoryEntry.Name()) {
			renamablePaths = append(renamablePaths, currentPath)
		}
		return nil
	})
	if walkError != nil {
		return walkError
	}

	sort.Slice(renamablePaths, func(firstIndex int, secondIndex int) bool {
		return pathDepth(renamablePaths[firstIndex]) > pathDepth(renamablePaths[secondIndex])
	})

	for _, renamablePath := range renamablePaths {
		renamedBase := ruleset.Apply(filepath.Base(renamablePath))
		renamedPath := filepath.Join(filepath.Dir(renamablePath), renamedBase)
		if renamedPath == renamablePath {
			continue
		}
		if _, statError := os.Lstat(renamedPath); statError == nil {
			return CollisionError{TargetPath: renamedPath}
		}
		if renameError := os.Rename(renamablePath, renamedPath); renameError != nil {
			return fmt.Errorf(renameErrorTemplateConstant, renamablePath, renamedPath, renameError)
		}
		engine.logger.Debug(renamedPathLogMessageConstant,
			zap.String(sourcePathLogFieldConstant, renamablePath),
			zap.String(targetPathLogFieldConstant, renamedPath),
		)
	}

	engine.logger.Info(renameCompletionLogMessageConstant,
		zap.String(vocabularyLogFieldConstant, string(ruleset.Vocabulary)),
		zap.String(rootLogFieldConstant, root),
	)
	return nil
}

func (engine *Engine) renderFile(sourcePath string, targetPath string, ruleset Ruleset) error {
	fileContent, readError := os.ReadFile(sourcePath)
	if readError != nil {
		return fmt.Errorf(sourceReadErrorTemplateConstant, sourcePath, readError)
	}

	fileInfo, statError := os.Stat(sourcePath)
	if statError != nil {
		return fmt.Errorf(statErrorTemplateConstant, sourcePath, statError)
	}

	if _, targetStatError := os.Lstat(targetPath); targetStatError == nil {
		return CollisionError{TargetPath: targetPath}
	}

	renderedContent := fileContent
	if IsBinaryContent(fileContent) {
		engine.logger.Debug(binaryFileSkippedLogMessageConstant, zap.String(sourcePathLogFieldConstant, sourcePath))
	} else {
		renderedContent = []byte(ruleset.Apply(string(fileContent)))
	}

	if mkdirError := os.MkdirAll(filepath.Dir(targetPath), 0o755); mkdirError != nil {
		return fmt.Errorf(targetDirectoryErrorTemplateConstant, filepath.Dir(targetPath), mkdirError)
	}
	if writeError := os.WriteFile(targetPath, renderedContent, fileInfo.Mode().Perm()); writeError != nil {
		return fmt.Errorf(targetWriteErrorTemplateConstant, targetPath, writeError)
	}

	engine.logger.Debug(renderedFileLogMessageConstant,
		zap.String(sourcePathLogFieldConstant, sourcePath),
		zap.String(targetPathLogFieldConstant, targetPath),
	)
	return nil
}

func (engine *Engine) rewriteFileContents(filePath string, ruleset Ruleset) error {
	fileContent, readError := os.ReadFile(filePath)
	if readError != nil {
		return fmt.Errorf(sourceReadErrorTemplateConstant, filePath, readError)
	}
	if IsBinaryContent(fileContent) {
		engine.logger.Debug(binaryFileSkippedLogMessageConstant, zap.String(sourcePathLogFieldConstant, filePath))
		return nil
	}

	rewrittenContent := ruleset.Apply(string(fileContent))
	if rewrittenContent == string(fileContent) {
		return nil
	}

	fileInfo, statError := os.Stat(filePath)
	if statError != nil {
		return fmt.Errorf(statErrorTemplateConstant, filePath, statError)
	}
	if writeError := os.WriteFile(filePath, []byte(rewrittenContent), fileInfo.Mode().Perm()); writeError != nil {
		return fmt.Errorf(rewriteErrorTemplateConstant, filePath, writeError)
	}

	engine.logger.Debug(rewrittenFileLogMessageConstant, zap.String(sourcePathLogFieldConstant, filePath))
	return nil
}

// IsBinaryContent reports whether data looks like a binary payload by scanning
// the leading window for NUL bytes.
func IsBinaryContent(data []byte) bool {
	sniffWindow := data
	if len(sniffWindow) > binarySniffWindowSizeConstant {
		sniffWindow = sniffWindow[:binarySniffWindowSizeConstant]
	}
	return bytes.IndexByte(sniffWindow, 0) != -1
}

func pathDepth(candidatePath string) int {
	return strings.Count(filepath.Clean(candidatePath), string(filepath.Separator))
}
