package services

import (
	"slices"
	"sort"

	"github.com/accoumar12/dashboard/internal/models"
)

// Edge is one directed hop in the relationship graph. Every foreign key
// contributes a forward and a reverse edge, so traversal treats the graph as
// undirected. FromColumns live on FromTable and pair positionally with
// ToColumns on ToTable.
//
// An association edge is a synthetic direct hop between the two tables an
// association (many-to-many) table references; Via carries what is needed to
// chain the join through that table.
type Edge struct {
	FromTable     string
	ToTable       string
	FromColumns   []string
	ToColumns     []string
	IsAssociation bool
	Via           *AssociationVia
}

// AssociationVia describes the association table an Edge routes through.
// FromColumns pair with Edge.FromColumns, ToColumns with Edge.ToColumns.
type AssociationVia struct {
	Table       string
	FromColumns []string
	ToColumns   []string
}

// Path is an ordered sequence of edges from a source table to a target table
// with no repeated node. Tables lists every node in order including both
// endpoints.
type Path struct {
	Edges  []Edge
	Tables []string
}

// RelationshipGraph is a bidirectional adjacency structure over a Schema's
// foreign keys. It is built once per dataset activation and never mutated
// afterwards.
type RelationshipGraph struct {
	edges map[string][]Edge
}

const minAssociationFKs = 2

// NewRelationshipGraph builds the adjacency structure for a schema. Edge
// insertion order follows the schema's relationship order and is therefore
// deterministic for a fixed schema, which makes path discovery deterministic
// as well.
func NewRelationshipGraph(schema *models.Schema) *RelationshipGraph {
	g := &RelationshipGraph{edges: make(map[string][]Edge)}

	for _, rel := range schema.Relationships {
		g.addEdgePair(Edge{
			FromTable:   rel.FromTable,
			ToTable:     rel.ToTable,
			FromColumns: rel.FromColumns,
			ToColumns:   rel.ToColumns,
		})
	}

	for _, table := range schema.Tables {
		fks := outgoingForeignKeys(schema, table.Name)
		if !isAssociationTable(table, fks) {
			continue
		}
		for i := 0; i < len(fks); i++ {
			for j := i + 1; j < len(fks); j++ {
				if fks[i].ToTable == fks[j].ToTable {
					continue
				}
				g.addEdgePair(Edge{
					FromTable:     fks[i].ToTable,
					ToTable:       fks[j].ToTable,
					FromColumns:   fks[i].ToColumns,
					ToColumns:     fks[j].ToColumns,
					IsAssociation: true,
					Via: &AssociationVia{
						Table:       table.Name,
						FromColumns: fks[i].FromColumns,
						ToColumns:   fks[j].FromColumns,
					},
				})
			}
		}
	}

	return g
}

func (g *RelationshipGraph) addEdgePair(forward Edge) {
	reverse := Edge{
		FromTable:     forward.ToTable,
		ToTable:       forward.FromTable,
		FromColumns:   forward.ToColumns,
		ToColumns:     forward.FromColumns,
		IsAssociation: forward.IsAssociation,
	}
	if forward.Via != nil {
		reverse.Via = &AssociationVia{
			Table:       forward.Via.Table,
			FromColumns: forward.Via.ToColumns,
			ToColumns:   forward.Via.FromColumns,
		}
	}
	g.edges[forward.FromTable] = append(g.edges[forward.FromTable], forward)
	g.edges[reverse.FromTable] = append(g.edges[reverse.FromTable], reverse)
}

// isAssociationTable applies the association-table heuristic: at least two
// outgoing foreign keys and at most one column that is not part of any of
// them (a surrogate primary key). Junction tables carrying extra business
// columns are deliberately not matched; they still route via two real hops.
func isAssociationTable(table models.Table, fks []models.ForeignKey) bool {
	if len(fks) < minAssociationFKs {
		return false
	}

	fkColumns := make(map[string]bool)
	for _, fk := range fks {
		for _, c := range fk.FromColumns {
			fkColumns[c] = true
		}
	}

	extra := 0
	for _, col := range table.Columns {
		if !fkColumns[col.Name] {
			extra++
		}
	}
	return extra <= 1
}

func outgoingForeignKeys(schema *models.Schema, table string) []models.ForeignKey {
	var fks []models.ForeignKey
	for _, rel := range schema.Relationships {
		if rel.FromTable == table {
			fks = append(fks, rel)
		}
	}
	return fks
}

// GetRelatedTables returns the sorted set of tables directly reachable from
// the given table, association hops included.
func (g *RelationshipGraph) GetRelatedTables(table string) []string {
	var related []string
	for _, edge := range g.edges[table] {
		if !slices.Contains(related, edge.ToTable) {
			related = append(related, edge.ToTable)
		}
	}
	sort.Strings(related)
	return related
}

// FindPath returns a shortest simple path between two tables using
// breadth-first search with every edge at equal weight, or nil when the
// tables live in disconnected regions of the schema. FindPath(a, a) is the
// empty path.
func (g *RelationshipGraph) FindPath(fromTable, toTable string) *Path {
	if fromTable == toTable {
		return &Path{Tables: []string{fromTable}}
	}
	if _, ok := g.edges[fromTable]; !ok {
		return nil
	}

	type queueEntry struct {
		table string
		edges []Edge
	}
	queue := []queueEntry{{table: fromTable}}
	visited := map[string]bool{fromTable: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range g.edges[current.table] {
			if visited[edge.ToTable] {
				continue
			}

			pathEdges := make([]Edge, len(current.edges), len(current.edges)+1)
			copy(pathEdges, current.edges)
			pathEdges = append(pathEdges, edge)

			if edge.ToTable == toTable {
				tables := []string{fromTable}
				for _, e := range pathEdges {
					tables = append(tables, e.ToTable)
				}
				return &Path{Edges: pathEdges, Tables: tables}
			}

			visited[edge.ToTable] = true
			queue = append(queue, queueEntry{table: edge.ToTable, edges: pathEdges})
		}
	}

	return nil
}
