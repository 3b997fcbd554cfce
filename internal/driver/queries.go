package driver

// Triples are stored as (:Resource)-[:STATEMENT {relation}]->(:Resource), one
// edge per object. Entity equivalence is a SAME_AS edge.
const (
	GetObjectsQuery = `
		MATCH (s:Resource {uri: $subject})-[r:STATEMENT {relation: $relation}]->(o:Resource)
		RETURN o.uri AS object
	`

	CountObjectsQuery = `
		MATCH (s:Resource {uri: $subject})-[r:STATEMENT {relation: $relation}]->(o:Resource)
		WHERE o.uri IN $objects
		RETURN count(DISTINCT o.uri) AS matched
	`

	InsertStatementQuery = `
		MERGE (s:Resource {uri: $subject})
		MERGE (o:Resource {uri: $object})
		MERGE (s)-[r:STATEMENT {relation: $relation}]->(o)
		RETURN id(r) AS id
	`

	DeleteStatementQuery = `
		MATCH (s:Resource {uri: $subject})-[r:STATEMENT {relation: $relation}]->(o:Resource {uri: $object})
		DELETE r
		RETURN count(*) AS deleted
	`

	SameAsQuery = `
		MERGE (a:Resource {uri: $entity_a})
		MERGE (b:Resource {uri: $entity_b})
		MERGE (a)-[r:SAME_AS]->(b)
		RETURN id(r) AS id
	`

	GetEntityQuery = `
		MATCH (s:Resource {uri: $subject})-[r:STATEMENT]->(o:Resource)
		RETURN r.relation AS relation, o.uri AS object
		ORDER BY relation, object
	`
)
