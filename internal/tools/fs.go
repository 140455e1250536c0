package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FilesystemTools returns the file-backed workspace tools the agent uses to
// draft and store its report. All paths are confined to the configured root
// directory.
func (ts *Toolset) FilesystemTools() []Tool {
	return []Tool{
		ts.lsTool(),
		ts.readFileTool(),
		ts.writeFileTool(),
		ts.editFileTool(),
	}
}

// resolvePath joins a tool-supplied relative path with the workspace root and
// rejects escapes.
func (ts *Toolset) resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path must not be empty")
	}
	cleaned := filepath.Clean(filepath.Join(ts.rootDir, path))
	root := filepath.Clean(ts.rootDir)
	if cleaned != root && !strings.HasPrefix(cleaned, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the workspace root", path)
	}
	return cleaned, nil
}

func (ts *Toolset) lsTool() Tool {
	return Tool{
		Name:        "ls",
		Description: "List files in the agent workspace.",
		InputSchema: objectSchema(map[string]any{
			"path": prop("string", "Directory to list, relative to the workspace root (default: workspace root)"),
		}),
		Run: func(ctx context.Context, args map[string]any) string {
			dir, err := ts.resolvePath(stringArg(args, "path", "."))
			if err != nil {
				return toolError("Error listing files", err)
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				return toolError("Error listing files", err)
			}

			names := make([]string, 0, len(entries))
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() {
					name += "/"
				}
				names = append(names, name)
			}
			sort.Strings(names)

			if len(names) == 0 {
				return "The directory is empty."
			}
			return strings.Join(names, "\n")
		},
	}
}

func (ts *Toolset) readFileTool() Tool {
	return Tool{
		Name:        "read_file",
		Description: "Read a file from the agent workspace.",
		InputSchema: objectSchema(map[string]any{
			"path": prop("string", "File path relative to the workspace root"),
		}, "path"),
		Run: func(ctx context.Context, args map[string]any) string {
			path, err := ts.resolvePath(stringArg(args, "path", ""))
			if err != nil {
				return toolError("Error reading file", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return toolError("Error reading file", err)
			}
			return string(data)
		},
	}
}

func (ts *Toolset) writeFileTool() Tool {
	return Tool{
		Name:        "write_file",
		Description: "Write a file in the agent workspace, creating parent directories as needed.",
		InputSchema: objectSchema(map[string]any{
			"path":    prop("string", "File path relative to the workspace root"),
			"content": prop("string", "Full file content to write"),
		}, "path", "content"),
		Run: func(ctx context.Context, args map[string]any) string {
			path, err := ts.resolvePath(stringArg(args, "path", ""))
			if err != nil {
				return toolError("Error writing file", err)
			}

			content, ok := args["content"].(string)
			if !ok {
				return "Error writing file: 'content' must be a string"
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return toolError("Error writing file", err)
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return toolError("Error writing file", err)
			}
			return fmt.Sprintf("Wrote %d bytes to %s", len(content), stringArg(args, "path", ""))
		},
	}
}

func (ts *Toolset) editFileTool() Tool {
	return Tool{
		Name:        "edit_file",
		Description: "Replace an exact string in a workspace file. The old string must appear exactly once.",
		InputSchema: objectSchema(map[string]any{
			"path":       prop("string", "File path relative to the workspace root"),
			"old_string": prop("string", "Exact text to replace"),
			"new_string": prop("string", "Replacement text"),
		}, "path", "old_string", "new_string"),
		Run: func(ctx context.Context, args map[string]any) string {
			path, err := ts.resolvePath(stringArg(args, "path", ""))
			if err != nil {
				return toolError("Error editing file", err)
			}

			oldString, okOld := args["old_string"].(string)
			newString, okNew := args["new_string"].(string)
			if !okOld || !okNew || oldString == "" {
				return "Error editing file: 'old_string' and 'new_string' must be non-empty strings"
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return toolError("Error editing file", err)
			}

			content := string(data)
			count := strings.Count(content, oldString)
			if count == 0 {
				return fmt.Sprintf("Error editing file: old_string not found in %s", stringArg(args, "path", ""))
			}
			if count > 1 {
				return fmt.Sprintf("Error editing file: old_string appears %d times in %s; it must be unique", count, stringArg(args, "path", ""))
			}

			updated := strings.Replace(content, oldString, newString, 1)
			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return toolError("Error editing file", err)
			}
			return fmt.Sprintf("Edited %s", stringArg(args, "path", ""))
		},
	}
}
