package mcpserver

// AnnotationContract describes the canonical annotation block format that
// LLM consumers should follow when annotating source files.
const AnnotationContract = `# CCD Annotation Block Contract

Every annotated source file carries a comment header linking it to a
documentation artifact. The block uses the host language's comment syntax
(examples below use Python line comments).

## Structure

` + "```" + `
# CCD-CONTEXT: @file:docs/modules/auth.md
# CCD-CONTEXT: @freshness:2025-01-20T09:30:00Z
# CCD-CONTEXT: @health:95%
# CCD-CONTEXT: @dependencies:docs/modules/session.md,docs/modules/crypto.md
# CCD-CONTEXT: @tags:auth,security
` + "```" + `

## Rules

1. **Required keys:** ` + "`" + `file` + "`" + `, ` + "`" + `freshness` + "`" + `, ` + "`" + `health` + "`" + `. A block missing any of
   them parses but fails validation as incomplete.
2. **@file** is the artifact path relative to the documentation root, forward
   slashes.
3. **@freshness** is an ISO-8601 timestamp of the last annotation refresh.
4. **@health** is an integer 0-100 with a trailing percent sign.
5. **Optional keys:** ` + "`" + `dependencies` + "`" + `, ` + "`" + `tags` + "`" + ` (comma-separated lists),
   ` + "`" + `owner` + "`" + `, ` + "`" + `review-date` + "`" + `, ` + "`" + `status` + "`" + `.
6. **Unknown @keys are preserved** on round-trip, never dropped.
7. The block sits at the top of the file, after a shebang or similar
   directive if one exists. Only the first 40 lines are scanned.

## Artifact front matter

Documentation artifacts are Markdown files with YAML front matter:

` + "```" + `markdown
---
title: Auth module
owner: platform-team
updatedAt: 2025-01-20T09:00:00Z
dependencies:
  - docs/modules/session.md
tags:
  - auth
consumers:
  - internal/auth/handler.go
---

Body prose...
` + "```" + `
`
