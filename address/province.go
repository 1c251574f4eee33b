package address

import "strings"

// postalPrefixProvinces maps Italian postal code (CAP) prefixes to the province
// code. Lookups go from the longest prefix (5 digits) to the shortest (3 digits).
var postalPrefixProvinces = map[string]string{
	// Piemonte, Valle d'Aosta, Liguria
	"100": "TO", "101": "TO", "111": "AO", "120": "CN", "121": "CN", "130": "VC", "131": "VC",
	"139": "BI", "140": "AT", "141": "AT", "150": "AL", "151": "AL", "280": "NO", "281": "NO",
	"288": "VB", "289": "VB",
	"160": "GE", "170": "SV", "180": "IM", "190": "SP",
	// Lombardia
	"200": "MI", "201": "MI", "208": "MB", "210": "VA", "211": "VA", "220": "CO", "230": "SO",
	"238": "LC", "239": "LC", "240": "BG", "250": "BS", "251": "BS", "260": "CR", "268": "LO",
	"269": "LO", "270": "PV", "460": "MN", "461": "MN",
	// Trentino-Alto Adige
	"380": "TN", "381": "TN", "390": "BZ", "391": "BZ",
	// Veneto, Friuli-Venezia Giulia
	"300": "VE", "301": "VE", "310": "TV", "311": "TV", "320": "BL", "330": "UD", "331": "UD",
	"341": "TS", "340": "GO", "350": "PD", "360": "VI", "361": "VI", "370": "VR", "371": "VR",
	"450": "RO", "451": "RO",
	// Emilia-Romagna
	"400": "BO", "401": "BO", "410": "MO", "411": "MO", "420": "RE", "430": "PR", "440": "FE",
	"470": "FC", "479": "RN", "480": "RA", "290": "PC", "291": "PC",
	// Toscana
	"500": "FI", "501": "FI", "510": "PT", "520": "AR", "530": "SI", "540": "MS", "550": "LU",
	"560": "PI", "570": "LI", "580": "GR", "590": "PO",
	// Marche, Umbria
	"600": "AN", "601": "AN", "610": "PU", "611": "PU", "620": "MC", "630": "AP", "638": "FM",
	"639": "FM", "050": "TR", "051": "TR", "060": "PG", "061": "PG",
	// Lazio
	"001": "RM", "010": "VT", "011": "VT", "020": "RI", "030": "FR", "040": "LT",
	// Abruzzo, Molise
	"640": "TE", "641": "TE", "650": "PE", "660": "CH", "670": "AQ", "860": "CB", "861": "IS",
	// Campania
	"800": "NA", "801": "NA", "810": "CE", "820": "BN", "830": "AV", "840": "SA",
	// Puglia, Basilicata
	"700": "BA", "701": "BA", "710": "FG", "720": "BR", "730": "LE", "740": "TA", "750": "MT",
	"760": "BT", "850": "PZ", "851": "PZ",
	// Calabria
	"870": "CS", "871": "CS", "880": "CZ", "889": "KR", "890": "RC", "899": "VV",
	// Sicilia
	"900": "PA", "901": "PA", "910": "TP", "920": "AG", "930": "CL", "940": "EN", "950": "CT",
	"960": "SR", "970": "RG", "980": "ME",
	// Sardegna
	"070": "SS", "071": "SS", "080": "NU", "090": "CA", "091": "CA", "092": "SU", "09070": "OR",
}

// provinceNames maps lowercase province (and a few city) names to the
// province code.
var provinceNames = map[string]string{
	"mantova": "MN", "verona": "VR", "modena": "MO", "ferrara": "FE", "rovigo": "RO",
	"milano": "MI", "monza e della brianza": "MB", "monza": "MB", "brescia": "BS",
	"parma": "PR", "reggio emilia": "RE", "bergamo": "BG", "bologna": "BO",
	"padova": "PD", "vicenza": "VI", "trento": "TN", "bolzano": "BZ",
	"cremona": "CR", "pavia": "PV", "lodi": "LO", "lecco": "LC", "como": "CO", "sondrio": "SO", "varese": "VA",
	"torino": "TO", "alpignano": "TO", "rivoli": "TO", "collegno": "TO", "pianezza": "TO",
	"novara": "NO", "verbano-cusio-ossola": "VB", "verbania": "VB", "vercelli": "VC", "biella": "BI", "asti": "AT", "alessandria": "AL", "cuneo": "CN", "aosta": "AO",
	"genova": "GE", "savona": "SV", "imperia": "IM", "la spezia": "SP",
	"venezia": "VE", "treviso": "TV", "belluno": "BL", "udine": "UD", "gorizia": "GO", "trieste": "TS",
	"ravenna": "RA", "forlì-cesena": "FC", "rimini": "RN", "piacenza": "PC",
	"firenze": "FI", "prato": "PO", "pistoia": "PT", "lucca": "LU", "pisa": "PI", "livorno": "LI",
	"arezzo": "AR", "siena": "SI", "grosseto": "GR", "massa": "MS",
	"ancona": "AN", "pesaro": "PU", "urbino": "PU", "macerata": "MC", "ascoli piceno": "AP", "fermo": "FM",
	"terni": "TR", "perugia": "PG",
	"roma": "RM", "rieti": "RI", "viterbo": "VT", "latina": "LT", "frosinone": "FR",
	"l aquila": "AQ", "chieti": "CH", "pescara": "PE", "teramo": "TE",
	"napoli": "NA", "salerno": "SA", "caserta": "CE", "benevento": "BN", "avellino": "AV",
	"bari": "BA", "barletta-andria-trani": "BT", "andria": "BT", "barletta": "BT", "trani": "BT",
	"brindisi": "BR", "lecce": "LE", "taranto": "TA", "foggia": "FG",
	"campobasso": "CB", "isernia": "IS",
	"catanzaro": "CZ", "cosenza": "CS", "crotone": "KR", "reggio calabria": "RC", "vibo valentia": "VV",
	"palermo": "PA", "trapani": "TP", "agrigento": "AG", "caltanissetta": "CL", "enna": "EN",
	"catania": "CT", "messina": "ME", "ragusa": "RG", "siracusa": "SR",
	"cagliari": "CA", "sassari": "SS", "nuoro": "NU", "oristano": "OR", "sud sardegna": "SU",
}

// ProvinceFromPostalCode returns the province code of an Italian postal code
// using the longest matching prefix (5, then 4, then 3 digits). The second
// value is false when no prefix matches.
func ProvinceFromPostalCode(code string) (string, bool) {
	code = strings.TrimSpace(code)
	for _, n := range []int{5, 4, 3} {
		if len(code) < n {
			continue
		}
		if province, ok := postalPrefixProvinces[code[:n]]; ok {
			return province, true
		}
	}
	return "", false
}

// NormalizeProvince turns a user supplied province into its code. Two letter
// values are upper-cased, known names are mapped and anything else is returned
// upper-cased as is. Empty input returns an empty string.
func NormalizeProvince(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) == 2 {
		return strings.ToUpper(value)
	}
	if code, ok := provinceNames[strings.ToLower(value)]; ok {
		return code
	}
	return strings.ToUpper(value)
}
