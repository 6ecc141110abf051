package slug

// thaiWords is matched before single characters so common words read naturally.
// Longer entries must come first.
var thaiWords = [][2]string{
	{"ผลไม้", "phonlamai"},
	{"ขนม", "khanom"},
	{"ข้าว", "khao"},
	{"กาแฟ", "kafae"},
	{"ร้าน", "ran"},
	{"บ้าน", "ban"},
	{"ผัก", "phak"},
	{"หมู", "mu"},
	{"ไก่", "kai"},
	{"ไข่", "khai"},
	{"ปลา", "pla"},
	{"น้ำ", "nam"},
	{"นม", "nom"},
	{"ชา", "cha"},
	{"เอา", "ao"},
	{"เอ", "e"},
	{"แอ", "ae"},
	{"ไอ", "ai"},
	{"อำ", "am"},
}

// thaiChars maps a hand-authored subset of consonants and vowels. Tone marks and
// anything not listed are removed later by the character filter.
var thaiChars = map[rune]string{
	'ก': "k", 'ข': "kh", 'ค': "kh", 'ฆ': "kh", 'ง': "ng",
	'จ': "ch", 'ฉ': "ch", 'ช': "ch", 'ซ': "s", 'ฌ': "ch",
	'ญ': "y", 'ฎ': "d", 'ฏ': "t", 'ฐ': "th", 'ฑ': "th",
	'ฒ': "th", 'ณ': "n", 'ด': "d", 'ต': "t", 'ถ': "th",
	'ท': "th", 'ธ': "th", 'น': "n", 'บ': "b", 'ป': "p",
	'ผ': "ph", 'ฝ': "f", 'พ': "ph", 'ฟ': "f", 'ภ': "ph",
	'ม': "m", 'ย': "y", 'ร': "r", 'ล': "l", 'ว': "w",
	'ศ': "s", 'ษ': "s", 'ส': "s", 'ห': "h", 'ฬ': "l",
	'อ': "o", 'ฮ': "h",
	'ะ': "a", 'า': "a", 'ิ': "i", 'ี': "i", 'ึ': "ue",
	'ื': "ue", 'ุ': "u", 'ู': "u", 'เ': "e", 'แ': "ae",
	'โ': "o", 'ใ': "ai", 'ไ': "ai", 'ำ': "am", 'ั': "a",
	'็': "", '่': "", '้': "", '๊': "", '๋': "", '์': "",
	'๐': "0", '๑': "1", '๒': "2", '๓': "3", '๔': "4",
	'๕': "5", '๖': "6", '๗': "7", '๘': "8", '๙': "9",
}
