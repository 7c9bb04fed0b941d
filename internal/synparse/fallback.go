package synparse

import (
	"strings"

	"github.com/73ai/code-context/internal/model"
)

// fallbackSymbols provides degraded-mode symbol extraction for a language
// whose grammar could not be loaded or whose parse failed outright. It scans
// line by line for declaration keywords rather than walking a CST, so it
// never reports containment (no Body, no Children) and accepts false
// negatives on anything split across lines.
func fallbackSymbols(languageID string, source []byte) []*model.Symbol {
	lines := strings.Split(string(source), "\n")
	switch languageID {
	case "go":
		return fallbackGo(lines)
	case "python":
		return fallbackPython(lines)
	case "javascript", "typescript":
		return fallbackJS(lines)
	case "rust":
		return fallbackRust(lines)
	case "c", "cpp":
		return fallbackCLike(lines)
	case "java":
		return fallbackJava(lines)
	default:
		return nil
	}
}

func fallbackGo(lines []string) []*model.Symbol {
	var out []*model.Symbol
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "func ("):
			if end := strings.Index(line, ") "); end > 0 {
				after := strings.TrimSpace(line[end+2:])
				name := strings.Split(after, "(")[0]
				out = append(out, lineSymbol(name, model.KindMethod, i+1))
			}
		case strings.HasPrefix(line, "func "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				name := strings.Split(fields[1], "(")[0]
				out = append(out, lineSymbol(name, model.KindFunction, i+1))
			}
		case strings.HasPrefix(line, "type "):
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				kind := model.KindTypeAlias
				switch {
				case strings.Contains(fields[2], "struct"):
					kind = model.KindClass
				case strings.Contains(fields[2], "interface"):
					kind = model.KindInterface
				}
				out = append(out, lineSymbol(fields[1], kind, i+1))
			}
		case strings.HasPrefix(line, "const "), strings.HasPrefix(line, "var "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				kind := model.KindVariable
				if fields[0] == "const" {
					kind = model.KindConstant
				}
				out = append(out, lineSymbol(fields[1], kind, i+1))
			}
		}
	}
	return out
}

func fallbackPython(lines []string) []*model.Symbol {
	var out []*model.Symbol
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "def "):
			name := strings.TrimPrefix(line, "def ")
			name = strings.Split(name, "(")[0]
			out = append(out, lineSymbol(strings.TrimSpace(name), model.KindFunction, i+1))
		case strings.HasPrefix(line, "class "):
			name := strings.TrimPrefix(line, "class ")
			name = strings.Split(name, "(")[0]
			name = strings.Split(name, ":")[0]
			out = append(out, lineSymbol(strings.TrimSpace(name), model.KindClass, i+1))
		}
	}
	return out
}

func fallbackJS(lines []string) []*model.Symbol {
	var out []*model.Symbol
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		line = strings.TrimPrefix(line, "export ")
		line = strings.TrimPrefix(line, "default ")
		switch {
		case strings.HasPrefix(line, "function "):
			name := strings.TrimPrefix(line, "function ")
			name = strings.TrimPrefix(name, "*")
			name = strings.Split(name, "(")[0]
			out = append(out, lineSymbol(strings.TrimSpace(name), model.KindFunction, i+1))
		case strings.HasPrefix(line, "class "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				out = append(out, lineSymbol(fields[1], model.KindClass, i+1))
			}
		case strings.HasPrefix(line, "interface "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				name := strings.TrimSuffix(fields[1], "{")
				out = append(out, lineSymbol(name, model.KindInterface, i+1))
			}
		case strings.HasPrefix(line, "type "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				name := strings.Split(fields[1], "=")[0]
				out = append(out, lineSymbol(strings.TrimSpace(name), model.KindTypeAlias, i+1))
			}
		}
	}
	return out
}

func fallbackRust(lines []string) []*model.Symbol {
	var out []*model.Symbol
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		line = strings.TrimPrefix(line, "pub ")
		switch {
		case strings.HasPrefix(line, "fn "):
			name := strings.TrimPrefix(line, "fn ")
			name = strings.Split(name, "(")[0]
			name = strings.Split(name, "<")[0]
			out = append(out, lineSymbol(strings.TrimSpace(name), model.KindFunction, i+1))
		case strings.HasPrefix(line, "struct "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				name := strings.TrimSuffix(fields[1], "{")
				name = strings.Split(name, "<")[0]
				out = append(out, lineSymbol(name, model.KindClass, i+1))
			}
		case strings.HasPrefix(line, "enum "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				out = append(out, lineSymbol(strings.TrimSuffix(fields[1], "{"), model.KindEnum, i+1))
			}
		case strings.HasPrefix(line, "trait "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				out = append(out, lineSymbol(strings.TrimSuffix(fields[1], "{"), model.KindInterface, i+1))
			}
		}
	}
	return out
}

func fallbackCLike(lines []string) []*model.Symbol {
	var out []*model.Symbol
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "struct "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				name := strings.TrimSuffix(fields[1], "{")
				out = append(out, lineSymbol(name, model.KindClass, i+1))
			}
		case strings.HasPrefix(line, "class "):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				name := strings.TrimSuffix(fields[1], "{")
				out = append(out, lineSymbol(name, model.KindClass, i+1))
			}
		case strings.Contains(line, "(") && strings.Contains(line, ")") && strings.HasSuffix(line, "{") && !strings.HasPrefix(line, "//"):
			paren := strings.Index(line, "(")
			if paren > 0 {
				words := strings.Fields(line[:paren])
				if len(words) > 0 {
					name := strings.TrimPrefix(words[len(words)-1], "*")
					if name != "if" && name != "while" && name != "for" && name != "switch" && name != "catch" {
						out = append(out, lineSymbol(name, model.KindFunction, i+1))
					}
				}
			}
		}
	}
	return out
}

func fallbackJava(lines []string) []*model.Symbol {
	var out []*model.Symbol
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case strings.Contains(line, "class "):
			idx := strings.Index(line, "class ")
			after := strings.TrimSpace(line[idx+len("class "):])
			fields := strings.Fields(after)
			if len(fields) >= 1 {
				out = append(out, lineSymbol(strings.TrimSuffix(fields[0], "{"), model.KindClass, i+1))
			}
		case strings.Contains(line, "interface "):
			idx := strings.Index(line, "interface ")
			after := strings.TrimSpace(line[idx+len("interface "):])
			fields := strings.Fields(after)
			if len(fields) >= 1 {
				out = append(out, lineSymbol(strings.TrimSuffix(fields[0], "{"), model.KindInterface, i+1))
			}
		}
	}
	return out
}

func lineSymbol(name string, kind model.SymbolKind, line int) *model.Symbol {
	pos := model.Position{Line: line, Column: 1, Offset: 0}
	return &model.Symbol{Name: name, Kind: kind, Declaration: model.Span{Start: pos, End: pos}}
}
