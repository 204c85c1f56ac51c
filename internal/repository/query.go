package repository

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/psiu/items-api/internal/model"
)

// visibleFilter matches every record that has not been soft-deleted.
// Records without the available field predate soft deletion and must stay
// visible, so absence counts the same as true.
func visibleFilter() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"available": true},
		bson.M{"available": bson.M{"$exists": false}},
	}}
}

// andFilter combines clauses into a single filter document. A single clause
// is returned as-is to keep the common queries flat.
func andFilter(clauses ...bson.M) bson.M {
	if len(clauses) == 1 {
		return clauses[0]
	}
	parts := make(bson.A, len(clauses))
	for i, c := range clauses {
		parts[i] = c
	}
	return bson.M{"$and": parts}
}

// baseListClauses builds the always-applied part of a list query: the
// availability filter plus the optional exact status match.
func baseListClauses(status model.Status) []bson.M {
	clauses := []bson.M{visibleFilter()}
	if status != "" {
		clauses = append(clauses, bson.M{"status": status})
	}
	return clauses
}

// textSearchFilter is the first search tier: the full-text index over title.
func textSearchFilter(base []bson.M, search string) bson.M {
	clauses := append(append([]bson.M{}, base...), bson.M{"$text": bson.M{"$search": search}})
	return andFilter(clauses...)
}

// patternSearchFilter is the fallback tier: a case-insensitive substring
// match against title or description. The search string is escaped so its
// metacharacters match literally instead of acting as pattern syntax.
func patternSearchFilter(base []bson.M, search string) bson.M {
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	clauses := append(append([]bson.M{}, base...), bson.M{"$or": bson.A{
		bson.M{"title": rx},
		bson.M{"description": rx},
	}})
	return andFilter(clauses...)
}
