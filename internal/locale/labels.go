package locale

import "strings"

// PositionPlaceholder is shown for players without a position.
const PositionPlaceholder = "-"

var positionLabels = map[string]map[string]string{
	"colocador": {"ca": "Col·locador", "es": "Colocador", "en": "Setter"},
	"opuesto":   {"ca": "Oposat", "es": "Opuesto", "en": "Opposite"},
	"central":   {"ca": "Central", "es": "Central", "en": "Middle blocker"},
	"receptor":  {"ca": "Receptor", "es": "Receptor", "en": "Outside hitter"},
	"libero":    {"ca": "Líbero", "es": "Líbero", "en": "Libero"},
}

// PositionLabel translates a position code. Codes outside the known set are
// returned unchanged; a missing position renders as PositionPlaceholder.
func PositionLabel(lang string, code *string) string {
	if code == nil {
		return PositionPlaceholder
	}
	raw := strings.TrimSpace(*code)
	if raw == "" {
		return PositionPlaceholder
	}
	if labels, ok := positionLabels[strings.ToLower(raw)]; ok {
		if label, ok := labels[lang]; ok {
			return label
		}
	}
	return raw
}

var messages = map[string]map[string]string{
	"site.title":        {"ca": "Voleibol Stats", "es": "Voleibol Stats", "en": "Volleyball Stats"},
	"nav.home":          {"ca": "Inici", "es": "Inicio", "en": "Home"},
	"nav.results":       {"ca": "Resultats", "es": "Resultados", "en": "Results"},
	"nav.login":         {"ca": "Accedeix", "es": "Acceder", "en": "Log in"},
	"home.teams":        {"ca": "Equips", "es": "Equipos", "en": "Teams"},
	"home.latest":       {"ca": "Últims resultats", "es": "Últimos resultados", "en": "Latest results"},
	"home.seasons":      {"ca": "Temporades", "es": "Temporadas", "en": "Seasons"},
	"team.stats":        {"ca": "Estadístiques", "es": "Estadísticas", "en": "Statistics"},
	"team.played":       {"ca": "Partits", "es": "Partidos", "en": "Played"},
	"team.wins":         {"ca": "Victòries", "es": "Victorias", "en": "Wins"},
	"team.losses":       {"ca": "Derrotes", "es": "Derrotas", "en": "Losses"},
	"team.draws":        {"ca": "Empats", "es": "Empates", "en": "Draws"},
	"team.sets":         {"ca": "Sets", "es": "Sets", "en": "Sets"},
	"team.streak":       {"ca": "Ratxa", "es": "Racha", "en": "Streak"},
	"team.roster":       {"ca": "Plantilla", "es": "Plantilla", "en": "Roster"},
	"team.scorers":      {"ca": "Màxims anotadors", "es": "Máximos anotadores", "en": "Top scorers"},
	"team.matches":      {"ca": "Partits", "es": "Partidos", "en": "Matches"},
	"match.home":        {"ca": "Casa", "es": "Casa", "en": "Home"},
	"match.away":        {"ca": "Fora", "es": "Fuera", "en": "Away"},
	"match.points":      {"ca": "Punts", "es": "Puntos", "en": "Points"},
	"empty":             {"ca": "Sense dades", "es": "Sin datos", "en": "No data"},
	"page.quisom":       {"ca": "Qui som", "es": "Quiénes somos", "en": "About us"},
	"page.contacte":     {"ca": "Contacte", "es": "Contacto", "en": "Contact"},
	"page.privacitat":   {"ca": "Privacitat", "es": "Privacidad", "en": "Privacy"},
	"page.avis-legal":   {"ca": "Avís legal", "es": "Aviso legal", "en": "Legal notice"},
	"page.cookies":      {"ca": "Cookies", "es": "Cookies", "en": "Cookies"},
	"page.com-funciona": {"ca": "Com funciona", "es": "Cómo funciona", "en": "How it works"},
	"error.generic":     {"ca": "S'ha produït un error", "es": "Se ha producido un error", "en": "Something went wrong"},
}

// T returns the label for key in lang, falling back to the default
// language and then to the key itself.
func T(lang, key string) string {
	labels, ok := messages[key]
	if !ok {
		return key
	}
	if label, ok := labels[lang]; ok {
		return label
	}
	if label, ok := labels["ca"]; ok {
		return label
	}
	return key
}
