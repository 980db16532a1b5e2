// Package vault implements [engine.Host] over a directory of markdown notes.
//
// A [Vault] is rooted with [os.Root], so every read, listing and move stays
// inside the vault directory. Documents are ".md" files; containers are
// directories, addressed by normalized "/"-separated paths with the vault
// root written as "/". The configuration directory (".obsidian" by default)
// is reserved: it is never listed, loaded or moved into.
//
// Tags come from the frontmatter "tags" or "tag" key and from inline
// "#tags" in the markdown body. Inline tags are read from the goldmark AST,
// so tags inside code spans and code blocks are ignored.
package vault
