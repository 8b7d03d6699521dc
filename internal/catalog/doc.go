// Package catalog holds the static stage archetype reference data.
//
// Archetypes are the selectable building blocks for hiring pipelines: each
// pairs a display name with the category (internal, external, partner,
// client, verification) that stages created from it inherit. The catalog is
// immutable; per-role customization happens on the stages themselves.
package catalog
