package namegen

var adjectives = []string{
	"Agile", "Amber", "Bold", "Brave", "Brisk", "Calm", "Clever", "Cosmic",
	"Daring", "Dapper", "Deft", "Dusty", "Eager", "Early", "Fancy", "Fiery",
	"Frosty", "Gentle", "Giddy", "Golden", "Grand", "Happy", "Hasty", "Hidden",
	"Humble", "Jolly", "Jumpy", "Keen", "Kind", "Lively", "Loyal", "Lucky",
	"Mellow", "Merry", "Mighty", "Misty", "Nimble", "Noble", "Perky", "Plucky",
	"Polite", "Proud", "Quick", "Quiet", "Rapid", "Regal", "Rowdy", "Royal",
	"Rusty", "Sandy", "Sassy", "Shiny", "Silent", "Silly", "Sleepy", "Slick",
	"Snappy", "Solar", "Speedy", "Spry", "Stark", "Stormy", "Sunny", "Swift",
	"Tidy", "Tiny", "Vivid", "Wild", "Witty", "Zany", "Zesty",
}

var animals = []string{
	"Ant", "Badger", "Bat", "Bear", "Beaver", "Bee", "Bison", "Boar",
	"Bobcat", "Camel", "Cobra", "Condor", "Cougar", "Coyote", "Crab", "Crane",
	"Crow", "Deer", "Dingo", "Dove", "Duck", "Eagle", "Egret", "Elk",
	"Falcon", "Ferret", "Finch", "Fox", "Frog", "Gecko", "Gibbon", "Goose",
	"Hare", "Hawk", "Heron", "Hornet", "Horse", "Hyena", "Ibex", "Iguana",
	"Jackal", "Jaguar", "Koala", "Lemur", "Lion", "Lizard", "Llama", "Lynx",
	"Macaw", "Magpie", "Marmot", "Mole", "Moose", "Moth", "Mouse", "Newt",
	"Ocelot", "Orca", "Osprey", "Otter", "Owl", "Panda", "Parrot", "Pony",
	"Puffin", "Puma", "Quail", "Rabbit", "Raven", "Robin", "Salmon", "Seal",
	"Shrew", "Skunk", "Sloth", "Snail", "Squid", "Stork", "Swan", "Tapir",
	"Tiger", "Toad", "Trout", "Turtle", "Viper", "Walrus", "Wasp", "Weasel",
	"Whale", "Wolf", "Wombat", "Wren", "Yak", "Zebra",
}
