// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package roster validates and loads the chamber's state document: the party
seat table and the character roster.

Imports arrive as JSON from the moderator API:

	doc, err := roster.ValidateDocument(body)

A YAML seed can be loaded at startup:

	doc, err := roster.LoadFile("roster.yaml")

Both paths check the embedded JSON Schema (state.schema.json) and then
the cross-references the schema cannot express.
*/
package roster
