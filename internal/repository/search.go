package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// applySearch 关键字在任一列中出现即命中，关键字中的通配符按字面匹配
func applySearch(query *gorm.DB, keyword string, columns ...string) *gorm.DB {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return query
	}
	pattern := "%" + likeEscaper.Replace(keyword) + "%"
	op := likeOperator(query.Dialector)

	exprs := make([]clause.Expression, 0, len(columns))
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		exprs = append(exprs, clause.Expr{
			SQL:  column + " " + op + " ? ESCAPE '" + likeEscape + "'",
			Vars: []interface{}{pattern},
		})
	}
	if len(exprs) == 0 {
		return query
	}
	return query.Where(clause.Or(exprs...))
}

// likeOperator sqlite 的 LIKE 对 ASCII 不区分大小写，postgres 需要 ILIKE
func likeOperator(d gorm.Dialector) string {
	if d != nil && strings.HasPrefix(d.Name(), "postgres") {
		return "ILIKE"
	}
	return "LIKE"
}
