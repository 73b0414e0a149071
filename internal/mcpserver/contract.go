package mcpserver

// PageFormat describes the markdown source format the site builder
// understands, for LLM consumers writing new documents.
const PageFormat = `# Page Format

Every page of the site is a Markdown file with optional YAML front matter.

## Structure

` + "```" + `markdown
---
title: Human-readable title     # optional, falls back to the first "# " heading, then the file name
description: One sentence        # optional, used for meta tags and listings
tags: [go, notes]                # optional, YAML list or comma separated string
order: 10                        # optional number; ordered pages sort before unordered ones
date: 2025-01-15                 # optional date or datetime; dated pages sort before undated ones
draft: true                      # optional; drafts are not rendered by the default views
---

Body text in Markdown (CommonMark with GitHub extensions).
` + "```" + `

## Paths

- ` + "`" + `blog/post.md` + "`" + ` is served at ` + "`" + `/blog/post` + "`" + `.
- ` + "`" + `blog/index.md` + "`" + ` is served at ` + "`" + `/blog` + "`" + ` and is the parent of every page below ` + "`" + `blog/` + "`" + `.
- ` + "`" + `index.md` + "`" + ` at the root is served at ` + "`" + `/` + "`" + `.
- Two files may not map to the same path (` + "`" + `a.md` + "`" + ` and ` + "`" + `a/index.md` + "`" + ` conflict).

## Links

- Link to other pages by their source file: ` + "`" + `[Post B](post-b.md)` + "`" + `.
  Relative targets resolve against the linking file's folder; targets starting
  with ` + "`" + `/` + "`" + ` resolve against the site root. Fragments are kept: ` + "`" + `[x](post-b.md#setup)` + "`" + `.
- Every resolved link shows up as a backlink on the target page.
- Links with a scheme (` + "`" + `https://...` + "`" + `) are external and open with ` + "`" + `rel="external noopener noreferrer"` + "`" + `.

## Assets

Any non-Markdown file in the source tree (images, CSS, PDFs) is copied to the
same relative location in the output. Hidden files and folders are ignored.
`
