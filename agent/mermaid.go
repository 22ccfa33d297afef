package agent

import (
	"fmt"
	"strings"
)

// RenderMermaid produces a Mermaid flowchart of the dialog graph. Visited
// nodes, when given, are highlighted.
func RenderMermaid(visited ...Node) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    START((START))\n")
	for _, node := range Nodes() {
		opener, closer := "[", "]"
		if node.IsTerminal() {
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", node, opener, node, closer))
	}
	sb.WriteString("    END((END))\n")
	sb.WriteString(fmt.Sprintf("    START --> %s\n", NodeDetectIntent))
	for _, t := range transitions {
		if t.Label != "" {
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", t.From, t.Label, t.To))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", t.From, t.To))
	}
	for _, node := range Nodes() {
		if node.IsTerminal() {
			sb.WriteString(fmt.Sprintf("    %s --> END\n", node))
		}
	}
	if len(visited) > 0 {
		sb.WriteString("\n    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		seen := make(map[Node]bool, len(visited))
		for _, node := range visited {
			if seen[node] {
				continue
			}
			seen[node] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", node))
		}
	}
	return sb.String()
}
