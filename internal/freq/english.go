package freq

// English letter frequencies (percent) from published corpus statistics.
var englishUnigram = mustNew(1, []Entry{
	{"A", 8.167}, {"B", 1.492}, {"C", 2.782}, {"D", 4.253}, {"E", 12.702},
	{"F", 2.228}, {"G", 2.015}, {"H", 6.094}, {"I", 6.966}, {"J", 0.153},
	{"K", 0.772}, {"L", 4.025}, {"M", 2.406}, {"N", 6.749}, {"O", 7.507},
	{"P", 1.929}, {"Q", 0.095}, {"R", 5.987}, {"S", 6.327}, {"T", 9.056},
	{"U", 2.758}, {"V", 0.978}, {"W", 2.360}, {"X", 0.150}, {"Y", 1.974},
	{"Z", 0.074},
})

// Fifty most common English bigrams (percent of all bigram positions),
// from Norvig's Google Books n-gram counts.
var englishBigram = mustNew(2, []Entry{
	{"TH", 3.56}, {"HE", 3.07}, {"IN", 2.43}, {"ER", 2.05}, {"AN", 1.99},
	{"RE", 1.85}, {"ON", 1.76}, {"AT", 1.49}, {"EN", 1.45}, {"ND", 1.35},
	{"TI", 1.34}, {"ES", 1.34}, {"OR", 1.28}, {"TE", 1.20}, {"OF", 1.17},
	{"ED", 1.17}, {"IS", 1.13}, {"IT", 1.12}, {"AL", 1.09}, {"AR", 1.07},
	{"ST", 1.05}, {"TO", 1.04}, {"NT", 1.04}, {"NG", 0.95}, {"SE", 0.93},
	{"HA", 0.93}, {"AS", 0.87}, {"OU", 0.87}, {"IO", 0.83}, {"LE", 0.83},
	{"VE", 0.83}, {"CO", 0.79}, {"ME", 0.79}, {"DE", 0.76}, {"HI", 0.76},
	{"RI", 0.73}, {"RO", 0.73}, {"IC", 0.70}, {"NE", 0.69}, {"EA", 0.69},
	{"RA", 0.69}, {"CE", 0.65}, {"LI", 0.62}, {"CH", 0.60}, {"LL", 0.58},
	{"BE", 0.58}, {"MA", 0.57}, {"SI", 0.55}, {"OM", 0.55}, {"UR", 0.54},
})

// EnglishUnigram returns the built-in English letter table.
func EnglishUnigram() Table { return englishUnigram }

// EnglishBigram returns the built-in English bigram table.
func EnglishBigram() Table { return englishBigram }

// English returns both built-in English tables.
func English() Set {
	return Set{Name: "english", Unigram: englishUnigram, Bigram: englishBigram}
}
