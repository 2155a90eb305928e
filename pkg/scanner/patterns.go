package scanner

import "regexp"

// PatternType classifies what kind of reference a match represents.
type PatternType string

// Pattern types.
const (
	TypeSkillReference  PatternType = "skillReference"
	TypeAgentReference  PatternType = "agentReference"
	TypeSystemCommand   PatternType = "systemCommand"
	TypeToolReference   PatternType = "toolReference"
	TypePluginReference PatternType = "pluginReference"
)

// PatternTypes lists all known pattern types, for flag validation.
var PatternTypes = []PatternType{
	TypeSkillReference,
	TypeAgentReference,
	TypeSystemCommand,
	TypeToolReference,
	TypePluginReference,
}

// pattern is a compiled reference pattern. When the regexp contains a
// capture group, the group is the matched text and the surrounding
// expression only anchors it (RE2 has no lookahead, so trailing
// delimiters are matched and then excluded via the group).
type pattern struct {
	re  *regexp.Regexp
	typ PatternType
}

func compilePatterns(typ PatternType, exprs []string) []pattern {
	patterns := make([]pattern, 0, len(exprs))
	for _, expr := range exprs {
		patterns = append(patterns, pattern{re: regexp.MustCompile(expr), typ: typ})
	}
	return patterns
}

// buildPatterns returns the full reference-pattern corpus.
func buildPatterns() []pattern {
	var patterns []pattern

	patterns = append(patterns, compilePatterns(TypeSkillReference, []string{
		// Slash command style: /plugin:skill, /skill
		`(?i)/[\w-]+:[\w-]+`,
		`(?i)(/[\w-]+)(?:[\s)\]]|$)`,
		// Skill tool invocations
		`(?i)Skill\s*\(\s*skill\s*=\s*["'][\w-]+(?::[\w-]+)?["']`,
		`(?i)Skill\s+tool\s+(?:to\s+)?(?:invoke|call|use)`,
		`(?i)invoke\s+(?:the\s+)?skill`,
		`(?i)use\s+(?:the\s+)?skill`,
		`(?i)(?:the\s+)?[\w-]+(?::[\w-]+)?\s+skill(?:\s+to)?`,
		// Skill mentions in markdown
		"(?i)`[\\w-]+:[\\w-]+`\\s*skill",
		"(?i)skill\\s*[`'\"][\\w-]+(?::[\\w-]+)?[`'\"]",
	})...)

	patterns = append(patterns, compilePatterns(TypeAgentReference, []string{
		// @ mentions
		`(?i)(@[\w-]+)(?:[\s,]|$)`,
		// Subagent patterns
		`(?i)sub-?agent`,
		`(?i)subagent[_\s]type`,
		// Task tool
		`(?i)Task\s+tool`,
		`(?i)TaskCreate|TaskUpdate|TaskGet|TaskList`,
		// Agent invocations
		`(?i)launch\s+(?:an?\s+)?agent`,
		`(?i)spawn\s+(?:an?\s+)?agent`,
		`(?i)(?:create|start|invoke)\s+(?:an?\s+)?(?:sub)?agent`,
		// Agent file references
		`(?i)agents?/[\w-]+\.md`,
		`(?i)AGENT\.md`,
	})...)

	patterns = append(patterns, compilePatterns(TypeSystemCommand, []string{
		// Backticked commands (common CLI tools)
		"(?i)`(?:git|npm|pnpm|yarn|pip|cargo|docker|kubectl|gh|curl|wget|make|cmake)(?:\\s+[\\w-]+)*`",
		// Bash tool invocations
		`(?i)Bash\s+tool`,
		`(?i)(?:run|execute)\s+(?:the\s+)?(?:command|script)`,
		// Command checks
		`(?i)which\s+[\w-]+`,
		`(?i)[\w-]+\s+--version`,
		`(?i)command\s+-v\s+[\w-]+`,
		// Shebangs
		`(?i)#!/(?:usr/)?(?:local/)?bin/(?:env\s+)?(?:bash|sh|python3?|node|ruby|perl)`,
		// Python imports
		`(?im)^import\s+[\w.]+`,
		`(?im)^from\s+[\w.]+\s+import`,
		// JavaScript/TypeScript requires and imports
		`(?i)require\s*\(\s*['"][\w@/.-]+['"]\s*\)`,
		`(?i)import\s+.*\s+from\s+['"][\w@/.-]+['"]`,
		// Package manager install commands
		`(?i)(?:pip|npm|pnpm|yarn|cargo)\s+(?:install|add)\s+[\w@/.-]+`,
	})...)

	patterns = append(patterns, compilePatterns(TypeToolReference, []string{
		// Tool mentions
		`(?i)use\s+(?:the\s+)?\w+\s+tool`,
		`(?i)\w+\s+tool(?:\s+to)?`,
		`(?i)call\s+(?:the\s+)?\w+\s+tool`,
		`(?i)invoke\s+(?:the\s+)?\w+\s+tool`,
		// Hook references
		`(?i)PreToolUse|PostToolUse`,
		`(?i)tool\s*hook`,
		// Tool invocations in markdown
		`(?i)<invoke\s+name=['"]\w+['"]`,
		`(?i)<parameter`,
		// MCP tool references
		`(?i)mcp__[\w-]+__\w+`,
	})...)

	patterns = append(patterns, compilePatterns(TypePluginReference, []string{
		// Plugin mentions
		`(?i)[\w-]+\s+plugin`,
		`(?i)plugin\s+[\w-]+`,
		// Dependency declarations
		`(?i)requires\s+(?:the\s+)?[\w-]+`,
		`(?i)depends\s+on\s+[\w-]+`,
		`(?i)dependency\s+(?:on\s+)?[\w-]+`,
		// Installation references
		`(?i)install\s+[\w-]+(?:@[\w-]+)?`,
		`(?i)plugin\s+install\s+[\w-]+`,
		// Prerequisite mentions
		`(?i)prerequisites?\s*:?\s*[\w-]+`,
		`(?i)needs\s+(?:the\s+)?[\w-]+\s+plugin`,
		// JSON dependency declarations (in extends-plugin.json)
		`(?i)"dependencies"\s*:\s*\{`,
		`(?i)"optionalDependencies"\s*:\s*\{`,
		`(?i)"systemDependencies"\s*:\s*\{`,
		// Plugin references in markdown
		"(?i)`[\\w-]+@[\\w-]+`",
		`(?i)[\w-]+@[\w-]+(?:\s+plugin)?`,
	})...)

	return patterns
}
