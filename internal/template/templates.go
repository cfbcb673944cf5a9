package template

// referenceTemplate scaffolds a documentation skill.
const referenceTemplate = `---
name: {{.Name}}
description: {{.Description}}
kind: reference{{if .Keywords}}
keywords:{{range .Keywords}}
  - {{.}}{{end}}{{end}}
created: "{{.Date}}"
---

# {{.Name}}

{{.Description}}

## Quick Reference

| Task | How |
|------|-----|
| Describe the first task | Fill in the command or steps |

## Details

Add longer explanations, gotchas, and worked examples here. Keep the
quick reference table at the top current as the skill grows.

## See Also

- Related skills or external documentation.
`

// toolTemplate scaffolds a skill that ships a runnable helper script.
const toolTemplate = `---
name: {{.Name}}
description: {{.Description}}
kind: tool{{if .Keywords}}
keywords:{{range .Keywords}}
  - {{.}}{{end}}{{end}}
scripts:
  - scripts/run.sh
created: "{{.Date}}"
---

# {{.Name}}

{{.Description}}

## Usage

` + "```sh" + `
./scripts/run.sh
` + "```" + `

## How It Works

Describe what the script does, its inputs, and its outputs.

## Requirements

List the tools the script expects on PATH.
`

// stubScriptTemplate is the placeholder script written for tool skills.
const stubScriptTemplate = `#!/usr/bin/env bash
set -euo pipefail

# Stub for the {{.Name}} skill. Replace with the real implementation.
echo "{{.Name}}: not implemented yet" >&2
exit 1
`
