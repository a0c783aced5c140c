package books

// Protestant lists the 66 books of the Protestant canon in canonical order.
//
// Two-letter abbreviations that are also common English words ("Am", "Is",
// "So") or ambiguous between books ("Ge", "Ju", "Ti") are left out.
var Protestant = []Book{
	{Name: "Genesis", OSIS: "Gen", Aliases: []string{"Gen", "Gn"}},
	{Name: "Exodus", OSIS: "Exod", Aliases: []string{"Exod", "Exo", "Ex"}},
	{Name: "Leviticus", OSIS: "Lev", Aliases: []string{"Lev", "Lv"}},
	{Name: "Numbers", OSIS: "Num", Aliases: []string{"Num", "Nm", "Nb"}},
	{Name: "Deuteronomy", OSIS: "Deut", Aliases: []string{"Deut", "Deu", "Dt"}},
	{Name: "Joshua", OSIS: "Josh", Aliases: []string{"Josh", "Jos", "Jsh"}},
	{Name: "Judges", OSIS: "Judg", Aliases: []string{"Judg", "Jdg", "Jdgs"}},
	{Name: "Ruth", OSIS: "Ruth", Aliases: []string{"Rth", "Ru"}},
	{Name: "1 Samuel", OSIS: "1Sam", Number: 1, Aliases: []string{"Sam", "Sm"}},
	{Name: "2 Samuel", OSIS: "2Sam", Number: 2, Aliases: []string{"Sam", "Sm"}},
	{Name: "1 Kings", OSIS: "1Kgs", Number: 1, Aliases: []string{"Kgs", "Kin", "Ki"}},
	{Name: "2 Kings", OSIS: "2Kgs", Number: 2, Aliases: []string{"Kgs", "Kin", "Ki"}},
	{Name: "1 Chronicles", OSIS: "1Chr", Number: 1, Aliases: []string{"Chron", "Chr"}},
	{Name: "2 Chronicles", OSIS: "2Chr", Number: 2, Aliases: []string{"Chron", "Chr"}},
	{Name: "Ezra", OSIS: "Ezra", Aliases: []string{"Ezr"}},
	{Name: "Nehemiah", OSIS: "Neh", Aliases: []string{"Neh"}},
	{Name: "Esther", OSIS: "Esth", Aliases: []string{"Esth", "Est"}},
	{Name: "Job", OSIS: "Job", Aliases: []string{"Jb"}},
	{Name: "Psalm", OSIS: "Ps", Aliases: []string{"Psalms", "Ps", "Psa", "Pss", "Psm"}},
	{Name: "Proverbs", OSIS: "Prov", Aliases: []string{"Prov", "Pro", "Prv"}},
	{Name: "Ecclesiastes", OSIS: "Eccl", Aliases: []string{"Eccl", "Eccles", "Ecc", "Qoh"}},
	{Name: "Song of Solomon", OSIS: "Song", Aliases: []string{"Song of Songs", "Song", "Canticles"}},
	{Name: "Isaiah", OSIS: "Isa", Aliases: []string{"Isa"}},
	{Name: "Jeremiah", OSIS: "Jer", Aliases: []string{"Jer", "Jr"}},
	{Name: "Lamentations", OSIS: "Lam", Aliases: []string{"Lam"}},
	{Name: "Ezekiel", OSIS: "Ezek", Aliases: []string{"Ezek", "Eze", "Ezk"}},
	{Name: "Daniel", OSIS: "Dan", Aliases: []string{"Dan", "Dn"}},
	{Name: "Hosea", OSIS: "Hos", Aliases: []string{"Hos"}},
	{Name: "Joel", OSIS: "Joel", Aliases: []string{"Jl"}},
	{Name: "Amos", OSIS: "Amos"},
	{Name: "Obadiah", OSIS: "Obad", Aliases: []string{"Obad"}},
	{Name: "Jonah", OSIS: "Jonah", Aliases: []string{"Jnh"}},
	{Name: "Micah", OSIS: "Mic", Aliases: []string{"Mic", "Mc"}},
	{Name: "Nahum", OSIS: "Nah", Aliases: []string{"Nah"}},
	{Name: "Habakkuk", OSIS: "Hab", Aliases: []string{"Hab", "Hb"}},
	{Name: "Zephaniah", OSIS: "Zeph", Aliases: []string{"Zeph", "Zep", "Zp"}},
	{Name: "Haggai", OSIS: "Hag", Aliases: []string{"Hag", "Hg"}},
	{Name: "Zechariah", OSIS: "Zech", Aliases: []string{"Zech", "Zec", "Zc"}},
	{Name: "Malachi", OSIS: "Mal", Aliases: []string{"Mal", "Ml"}},
	{Name: "Matthew", OSIS: "Matt", Aliases: []string{"Matt", "Mat", "Mt"}},
	{Name: "Mark", OSIS: "Mark", Aliases: []string{"Mrk", "Mk"}},
	{Name: "Luke", OSIS: "Luke", Aliases: []string{"Luk", "Lk"}},
	{Name: "John", OSIS: "John", Aliases: []string{"Jn", "Jhn", "Joh"}},
	{Name: "Acts", OSIS: "Acts"},
	{Name: "Romans", OSIS: "Rom", Aliases: []string{"Rom", "Rm"}},
	{Name: "1 Corinthians", OSIS: "1Cor", Number: 1, Aliases: []string{"Cor"}},
	{Name: "2 Corinthians", OSIS: "2Cor", Number: 2, Aliases: []string{"Cor"}},
	{Name: "Galatians", OSIS: "Gal", Aliases: []string{"Gal"}},
	{Name: "Ephesians", OSIS: "Eph", Aliases: []string{"Eph", "Ephes"}},
	{Name: "Philippians", OSIS: "Phil", Aliases: []string{"Phil", "Php"}},
	{Name: "Colossians", OSIS: "Col", Aliases: []string{"Col"}},
	{Name: "1 Thessalonians", OSIS: "1Thess", Number: 1, Aliases: []string{"Thess", "Thes", "Th"}},
	{Name: "2 Thessalonians", OSIS: "2Thess", Number: 2, Aliases: []string{"Thess", "Thes", "Th"}},
	{Name: "1 Timothy", OSIS: "1Tim", Number: 1, Aliases: []string{"Tim"}},
	{Name: "2 Timothy", OSIS: "2Tim", Number: 2, Aliases: []string{"Tim"}},
	{Name: "Titus", OSIS: "Titus"},
	{Name: "Philemon", OSIS: "Phlm", Aliases: []string{"Philem", "Phm", "Phlm"}},
	{Name: "Hebrews", OSIS: "Heb", Aliases: []string{"Heb"}},
	{Name: "James", OSIS: "Jas", Aliases: []string{"Jas", "Jm"}},
	{Name: "1 Peter", OSIS: "1Pet", Number: 1, Aliases: []string{"Pet", "Pt"}},
	{Name: "2 Peter", OSIS: "2Pet", Number: 2, Aliases: []string{"Pet", "Pt"}},
	{Name: "1 John", OSIS: "1John", Number: 1, Aliases: []string{"Jn", "Jhn", "Joh"}},
	{Name: "2 John", OSIS: "2John", Number: 2, Aliases: []string{"Jn", "Jhn", "Joh"}},
	{Name: "3 John", OSIS: "3John", Number: 3, Aliases: []string{"Jn", "Jhn", "Joh"}},
	{Name: "Jude", OSIS: "Jude", Aliases: []string{"Jd"}},
	{Name: "Revelation", OSIS: "Rev", Aliases: []string{"Revelations", "Rev", "Rv"}},
}
