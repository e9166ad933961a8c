package marketdata

// ScanUniverse is the default SET coverage for swing scans: SET50/100
// names grouped loosely by sector.
var ScanUniverse = []string{
	"PTT", "ADVANC", "SCB", "KBANK", "KTB", "BBL", "BAY", "AOT", "CPALL", "SCC",
	"GULF", "GPSC", "PTTEP", "PTTGC", "RATCH", "BGRIM", "EGCO", "BANPU", "EA",
	"TOP", "IRPC", "BCP", "SPRC",
	"MTC", "SAWAD", "TIDLOR", "TTB", "TISCO", "KKP", "TCAP", "AEONTS", "JMT", "JMART",
	"TRUE", "DELTA", "HANA", "KCE", "INTUCH", "INSET", "THCOM",
	"BH", "BDMS", "BCH", "CHG", "PRINC",
	"HMPRO", "COM7", "BJC", "GLOBAL", "MAKRO", "CRC", "CPAXTRA", "DOHOME",
	"OSP", "TU", "CPF", "GFPT", "OISHI", "ICHI",
	"CPN", "LH", "SPALI", "QH", "AP", "SC", "SIRI", "ORI", "WHA", "AMATA",
	"MINT", "CENTEL", "ERW", "MAJOR", "VGI", "BEC", "RS",
	"IVL", "STA", "STGT", "TTA", "PSL", "THAI", "AAV", "BA",
}

// DaytradeUniverse restricts intraday scans to high-liquidity names;
// thin books make short-interval fib levels meaningless.
var DaytradeUniverse = []string{
	"PTT", "ADVANC", "KBANK", "SCB", "KTB", "BBL", "AOT", "CPALL", "SCC", "GULF",
	"PTTEP", "BDMS", "DELTA", "TRUE", "MTC", "SAWAD", "MINT", "HMPRO", "COM7",
	"TU", "CPF", "IVL", "BANPU", "EA", "SPALI", "LH", "CPN", "BJC", "WHA", "AMATA",
	"BH", "CHG", "CENTEL", "ERW", "BCH", "TIDLOR", "AEONTS", "BAY", "TISCO", "KKP",
}
