package basketball_nba

// nbaTeam pairs a franchise's city with its nickname
type nbaTeam struct {
	City     string
	Nickname string
}

// NBA tricode mappings used by the live feed
var nbaTeams = map[string]nbaTeam{
	"ATL": {"Atlanta", "Hawks"},
	"BOS": {"Boston", "Celtics"},
	"BKN": {"Brooklyn", "Nets"},
	"CHA": {"Charlotte", "Hornets"},
	"CHI": {"Chicago", "Bulls"},
	"CLE": {"Cleveland", "Cavaliers"},
	"DAL": {"Dallas", "Mavericks"},
	"DEN": {"Denver", "Nuggets"},
	"DET": {"Detroit", "Pistons"},
	"GSW": {"Golden State", "Warriors"},
	"HOU": {"Houston", "Rockets"},
	"IND": {"Indiana", "Pacers"},
	"LAC": {"Los Angeles", "Clippers"},
	"LAL": {"Los Angeles", "Lakers"},
	"MEM": {"Memphis", "Grizzlies"},
	"MIA": {"Miami", "Heat"},
	"MIL": {"Milwaukee", "Bucks"},
	"MIN": {"Minnesota", "Timberwolves"},
	"NOP": {"New Orleans", "Pelicans"},
	"NYK": {"New York", "Knicks"},
	"OKC": {"Oklahoma City", "Thunder"},
	"ORL": {"Orlando", "Magic"},
	"PHI": {"Philadelphia", "76ers"},
	"PHX": {"Phoenix", "Suns"},
	"POR": {"Portland", "Trail Blazers"},
	"SAC": {"Sacramento", "Kings"},
	"SAS": {"San Antonio", "Spurs"},
	"TOR": {"Toronto", "Raptors"},
	"UTA": {"Utah", "Jazz"},
	"WAS": {"Washington", "Wizards"},
}

// GetTeamName returns the name substituted into live descriptions.
// The corpus uses nicknames ("Celtics"); unknown codes are returned as-is.
func GetTeamName(tricode string) string {
	if team, ok := nbaTeams[tricode]; ok {
		return team.Nickname
	}
	return tricode
}
