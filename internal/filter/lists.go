package filter

// WhitelistPhrases are software-engineering role phrases. A title must
// contain at least one of them.
var WhitelistPhrases = []string{
	"software engineer", "software developer", "software development engineer",
	"full stack", "full-stack", "fullstack",
	"frontend", "front end", "front-end",
	"backend", "back end", "back-end",
	"web developer", "web engineer", "application developer", "application engineer",
	"product engineer", "platform engineer", "mobile engineer", "mobile developer",
	"ios developer", "ios engineer", "android developer", "android engineer",
	"react developer", "react engineer", "react native",
	"node developer", "node.js developer", "nodejs developer",
	"javascript developer", "javascript engineer", "typescript developer", "typescript engineer",
	"python developer", "python engineer", "java developer", "java engineer",
	"golang developer", "golang engineer", "go developer", "go engineer",
	"ruby developer", "rails developer", "ruby on rails",
	"dotnet developer", "c# developer", "c++ developer", "rust engineer",
	"new grad", "new graduate", "entry level engineer", "junior engineer", "junior developer",
	"associate engineer", "associate software",
}

// whitelistTokens must match as whole words.
var whitelistTokens = []string{"swe", "sde"}

// seniorityPhrases mark roles above entry level.
var seniorityPhrases = []string{
	"senior", "sr", "staff", "principal", "lead", "leader", "manager",
	"director", "head of", "vp", "vice president", "architect", "distinguished", "fellow",
	"ii", "iii", "iv", "mid-level", "mid level", "expert",
}

// disciplinePhrases are adjacent roles outside software engineering.
var disciplinePhrases = []string{
	"security engineer", "application security", "cybersecurity", "penetration",
	"qa engineer", "qa analyst", "quality assurance", "quality engineer", "test engineer", "engineer in test", "sdet", "automation tester",
	"hardware engineer", "electrical engineer", "mechanical engineer", "firmware", "embedded", "fpga", "asic",
	"data analyst", "business analyst", "data scientist", "analytics engineer",
	"product manager", "project manager", "program manager", "product owner", "scrum master",
	"sales engineer", "solutions engineer", "solutions architect", "support engineer", "customer success",
	"network engineer", "systems administrator", "it support", "help desk",
	"clearance", "ts/sci",
}

// experiencePattern matches "5+ years", "3 yrs" and similar requirements.
const experiencePattern = `\d+\s*\+?\s*(?:years?|yrs?)`

// rssRoleKeywords: an RSS item title needs one of these to be considered.
var rssRoleKeywords = []string{
	"engineer", "developer", "programmer", "software", "full stack", "fullstack",
	"frontend", "front-end", "backend", "back-end", "swe",
}

// rssSeniorityKeywords reject RSS items when only recent entry-level roles are wanted.
var rssSeniorityKeywords = []string{
	"senior", "sr", "staff", "principal", "lead", "manager", "director", "head of", "architect",
}

// VisaKeywords move a job ahead of the rest when found in its title or description.
var VisaKeywords = []string{
	"opt", "cpt", "stem opt", "h1b", "h-1b", "h1-b", "visa sponsor", "visa sponsorship",
	"sponsorship available", "will sponsor", "e-verify",
}

// foreignLocations are countries, regions and cities outside the US.
var foreignLocations = []string{
	"canada", "toronto", "vancouver", "montreal", "ottawa", "calgary", "ontario", "british columbia", "quebec",
	"mexico", "brazil", "sao paulo", "argentina", "buenos aires", "colombia", "bogota", "chile", "peru", "latam", "latin america", "south america",
	"united kingdom", "uk", "england", "london", "manchester", "scotland", "edinburgh", "ireland", "dublin",
	"germany", "berlin", "munich", "hamburg", "france", "paris", "spain", "madrid", "barcelona",
	"portugal", "lisbon", "netherlands", "amsterdam", "belgium", "switzerland", "zurich", "austria", "vienna",
	"sweden", "stockholm", "norway", "denmark", "copenhagen", "finland", "poland", "warsaw", "krakow",
	"romania", "bucharest", "ukraine", "kyiv", "czech", "prague", "hungary", "budapest", "italy", "milan",
	"greece", "turkey", "istanbul", "europe", "emea", "eu",
	"india", "bangalore", "bengaluru", "hyderabad", "pune", "chennai", "mumbai", "delhi", "gurgaon", "gurugram", "noida",
	"pakistan", "karachi", "lahore", "bangladesh", "philippines", "manila", "singapore", "malaysia", "indonesia",
	"vietnam", "thailand", "japan", "tokyo", "china", "shanghai", "beijing", "shenzhen", "hong kong", "taiwan",
	"korea", "seoul", "apac", "asia",
	"australia", "sydney", "melbourne", "new zealand", "auckland",
	"israel", "tel aviv", "uae", "dubai", "saudi", "egypt", "cairo", "nigeria", "lagos", "kenya", "nairobi",
	"south africa", "cape town", "johannesburg",
}

// usLocationOverlaps are US place names that contain a foreign name.
var usLocationOverlaps = []string{"new mexico"}

var usStates = []string{
	"alabama", "alaska", "arizona", "arkansas", "california", "colorado", "connecticut", "delaware",
	"florida", "georgia", "hawaii", "idaho", "illinois", "indiana", "iowa", "kansas", "kentucky",
	"louisiana", "maine", "maryland", "massachusetts", "michigan", "minnesota", "mississippi",
	"missouri", "montana", "nebraska", "nevada", "new hampshire", "new jersey", "new mexico",
	"new york", "north carolina", "north dakota", "ohio", "oklahoma", "oregon", "pennsylvania",
	"rhode island", "south carolina", "south dakota", "tennessee", "texas", "utah", "vermont",
	"virginia", "washington", "west virginia", "wisconsin", "wyoming", "district of columbia",
}

var usCities = []string{
	"nyc", "san francisco", "bay area", "silicon valley", "seattle", "austin", "boston", "chicago",
	"los angeles", "denver", "atlanta", "dallas", "houston", "miami", "portland", "san diego",
	"san jose", "palo alto", "mountain view", "sunnyvale", "menlo park", "redmond", "bellevue",
	"philadelphia", "phoenix", "minneapolis", "pittsburgh", "raleigh", "durham", "salt lake city",
	"nashville", "detroit", "columbus", "charlotte", "baltimore", "st. louis", "kansas city",
	"brooklyn", "manhattan", "jersey city", "irvine", "santa monica", "boulder",
}

var usStateAbbreviations = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA", "HI", "ID", "IL", "IN", "IA", "KS",
	"KY", "LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ", "NM", "NY",
	"NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV",
	"WI", "WY", "DC",
}
