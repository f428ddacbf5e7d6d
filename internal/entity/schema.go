// Package entity maps TwigSlot domain objects (users, projects, resources,
// tags) onto a property graph: vertices with labels, directed typed edges,
// and string-keyed scalar properties. Every operation takes an explicit
// store session; the caller opens and closes it.
package entity

// Vertex labels. Part of the persisted layout; renaming any of these
// requires a migration.
const (
	LabelUser     = "User"
	LabelProject  = "Project"
	LabelResource = "Resource"
	LabelTag      = "Tag"
)

// Edge types, one per relationship role.
const (
	// RelOwns connects User -> Project.
	RelOwns = "owns"
	// RelHasResource connects Project -> Resource.
	RelHasResource = "has_resource"
	// RelProjectTag connects Project -> Tag.
	RelProjectTag = "project_tag"
	// RelHasTag connects Resource -> Tag.
	RelHasTag = "has_tag"
	// RelPrereq connects Resource -> Resource, ordering prerequisites.
	RelPrereq = "prereq"
)

// Property names. Also part of the persisted layout.
const (
	PropUsername     = "username"
	PropKratosUserID = "kratos_user_id"
	PropName         = "name"
	PropDescription  = "description"
	PropURL          = "url"
	PropPosX         = "pos_x"
	PropPosY         = "pos_y"
	PropColor        = "color"
	PropPriority     = "priority"
)

// PropUID is the synthesized property under which the store-assigned key is
// mirrored into an entity's property map after every sync. It is never
// written to the store.
const PropUID = "uid"
