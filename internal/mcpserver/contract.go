package mcpserver

// PostFormatContract describes the canonical Markdown post format that
// LLM consumers should follow when creating or updating posts.
const PostFormatContract = `# Ansuz Post Format Contract

Every blog post stored in Ansuz MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: "Human-readable title"       # REQUIRED
category: "technical"               # REQUIRED - category key (kebab-case)
date: "2025-01-15"                  # REQUIRED - YYYY-MM-DD
excerpt: "One-line summary"         # OPTIONAL - shown in listings
tags: ["go", "tooling"]             # OPTIONAL - bracketed list
status: "draft"                     # OPTIONAL - omit for published posts
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Front-matter is mandatory.** The ` + "`" + `---` + "`" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `title` + "`" + `, ` + "`" + `category` + "`" + `, and ` + "`" + `date` + "`" + ` are required.** A save without
   any of them is rejected, naming the missing field.
3. **The post id** is derived from the title (lowercase, hyphens), unless a
   ` + "`" + `slug` + "`" + ` field or an explicit id overrides it.
4. **` + "`" + `readTime` + "`" + ` is computed** from the body word count when absent; a
   supplied value is kept as-is.
5. **A missing ` + "`" + `status` + "`" + ` means published.** Write ` + "`" + `status: "draft"` + "`" + `
   explicitly to keep a post out of the public index.
6. **Unknown front-matter fields are preserved** across edits, in their
   original order. Do not remove fields you do not recognize.
7. **Encoding** is UTF-8; scalar values are double-quoted on save.

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a
  ` + "`" + `markdownImage` + "`" + ` field ready to paste into the post body.
- Assets live in ` + "`" + `images-<post-id>/` + "`" + ` directories next to the post tree.
- Supported formats: png, jpg, jpeg, gif, webp, svg.

## Example

` + "```" + `markdown
---
title: "Profiling Go Allocations"
category: "technical"
date: "2025-01-20"
excerpt: "Where the bytes actually go."
tags: ["go", "performance"]
---

# Profiling Go Allocations

![Flame graph](images-profiling-go-allocations/flame.png)

Body continues here.
` + "```" + `
`
