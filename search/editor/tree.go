package editor

import "github.com/laitim2001/ai-sales-enablement-webapp-sub005/search/models"

func findGroup(g *models.Group, id string) *models.Group {
	if g.ID == id {
		return g
	}
	for i := range g.Groups {
		if found := findGroup(&g.Groups[i], id); found != nil {
			return found
		}
	}
	return nil
}

func findCondition(g *models.Group, id string) *models.Condition {
	for i := range g.Conditions {
		if g.Conditions[i].ID == id {
			return &g.Conditions[i]
		}
	}
	for i := range g.Groups {
		if found := findCondition(&g.Groups[i], id); found != nil {
			return found
		}
	}
	return nil
}

func removeCondition(g *models.Group, id string) bool {
	for i := range g.Conditions {
		if g.Conditions[i].ID == id {
			g.Conditions = append(g.Conditions[:i:i], g.Conditions[i+1:]...)
			return true
		}
	}
	for i := range g.Groups {
		if removeCondition(&g.Groups[i], id) {
			return true
		}
	}
	return false
}

// removeGroup only looks at descendants of g, never g itself
func removeGroup(g *models.Group, id string) bool {
	for i := range g.Groups {
		if g.Groups[i].ID == id {
			g.Groups = append(g.Groups[:i:i], g.Groups[i+1:]...)
			return true
		}
		if removeGroup(&g.Groups[i], id) {
			return true
		}
	}
	return false
}

func cloneGroup(g models.Group) models.Group {
	out := g
	out.Conditions = make([]models.Condition, len(g.Conditions))
	for i, c := range g.Conditions {
		c.Value = cloneValue(c.Value)
		out.Conditions[i] = c
	}
	out.Groups = make([]models.Group, len(g.Groups))
	for i, child := range g.Groups {
		out.Groups[i] = cloneGroup(child)
	}
	return out
}

func cloneValue(v models.ConditionValue) models.ConditionValue {
	if v.List != nil {
		v.List = append([]string(nil), v.List...)
	}
	return v
}
