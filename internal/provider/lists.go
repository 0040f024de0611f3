package provider

import "valuemap/internal/valuation"

// Built-in constituent lists, ordered roughly by market capitalization. They
// serve indices without a live source and stand in when scraping fails.

var kospi200 = []Constituent{
	{"005930.KS", "005930", "Samsung Electronics", valuation.MarketKorea},
	{"000660.KS", "000660", "SK Hynix", valuation.MarketKorea},
	{"373220.KS", "373220", "LG Energy Solution", valuation.MarketKorea},
	{"207940.KS", "207940", "Samsung Biologics", valuation.MarketKorea},
	{"005380.KS", "005380", "Hyundai Motor", valuation.MarketKorea},
	{"006400.KS", "006400", "Samsung SDI", valuation.MarketKorea},
	{"051910.KS", "051910", "LG Chem", valuation.MarketKorea},
	{"000270.KS", "000270", "Kia", valuation.MarketKorea},
	{"035420.KS", "035420", "NAVER", valuation.MarketKorea},
	{"005490.KS", "005490", "POSCO Holdings", valuation.MarketKorea},
	{"055550.KS", "055550", "Shinhan Financial Group", valuation.MarketKorea},
	{"105560.KS", "105560", "KB Financial Group", valuation.MarketKorea},
	{"035720.KS", "035720", "Kakao", valuation.MarketKorea},
	{"003670.KS", "003670", "POSCO Future M", valuation.MarketKorea},
	{"012330.KS", "012330", "Hyundai Mobis", valuation.MarketKorea},
	{"066570.KS", "066570", "LG Electronics", valuation.MarketKorea},
	{"028260.KS", "028260", "Samsung C&T", valuation.MarketKorea},
	{"003550.KS", "003550", "LG Corp", valuation.MarketKorea},
	{"032830.KS", "032830", "Samsung Life Insurance", valuation.MarketKorea},
	{"086790.KS", "086790", "Hana Financial Group", valuation.MarketKorea},
	{"034730.KS", "034730", "SK Inc", valuation.MarketKorea},
	{"138040.KS", "138040", "Meritz Financial Group", valuation.MarketKorea},
	{"096770.KS", "096770", "SK Innovation", valuation.MarketKorea},
	{"010130.KS", "010130", "Korea Zinc", valuation.MarketKorea},
	{"030200.KS", "030200", "KT", valuation.MarketKorea},
	{"033780.KS", "033780", "KT&G", valuation.MarketKorea},
	{"018260.KS", "018260", "Samsung SDS", valuation.MarketKorea},
	{"009150.KS", "009150", "Samsung Electro-Mechanics", valuation.MarketKorea},
	{"011200.KS", "011200", "HMM", valuation.MarketKorea},
	{"036570.KS", "036570", "NCSoft", valuation.MarketKorea},
	{"017670.KS", "017670", "SK Telecom", valuation.MarketKorea},
	{"316140.KS", "316140", "Woori Financial Group", valuation.MarketKorea},
	{"003490.KS", "003490", "Korean Air", valuation.MarketKorea},
	{"010950.KS", "010950", "S-Oil", valuation.MarketKorea},
	{"024110.KS", "024110", "Industrial Bank of Korea", valuation.MarketKorea},
	{"011170.KS", "011170", "Lotte Chemical", valuation.MarketKorea},
	{"009540.KS", "009540", "HD Korea Shipbuilding", valuation.MarketKorea},
	{"042700.KS", "042700", "Hanmi Semiconductor", valuation.MarketKorea},
	{"000810.KS", "000810", "Samsung Fire & Marine", valuation.MarketKorea},
	{"015760.KS", "015760", "KEPCO", valuation.MarketKorea},
}

var sp500Fallback = []Constituent{
	{"AAPL", "AAPL", "Apple", valuation.MarketUSA},
	{"MSFT", "MSFT", "Microsoft", valuation.MarketUSA},
	{"GOOGL", "GOOGL", "Alphabet", valuation.MarketUSA},
	{"AMZN", "AMZN", "Amazon", valuation.MarketUSA},
	{"NVDA", "NVDA", "NVIDIA", valuation.MarketUSA},
	{"META", "META", "Meta", valuation.MarketUSA},
	{"TSLA", "TSLA", "Tesla", valuation.MarketUSA},
	{"BRK-B", "BRK.B", "Berkshire Hathaway", valuation.MarketUSA},
	{"UNH", "UNH", "UnitedHealth", valuation.MarketUSA},
	{"JNJ", "JNJ", "Johnson & Johnson", valuation.MarketUSA},
	{"JPM", "JPM", "JPMorgan", valuation.MarketUSA},
	{"V", "V", "Visa", valuation.MarketUSA},
	{"XOM", "XOM", "Exxon Mobil", valuation.MarketUSA},
	{"PG", "PG", "Procter & Gamble", valuation.MarketUSA},
	{"MA", "MA", "Mastercard", valuation.MarketUSA},
	{"HD", "HD", "Home Depot", valuation.MarketUSA},
	{"CVX", "CVX", "Chevron", valuation.MarketUSA},
	{"LLY", "LLY", "Eli Lilly", valuation.MarketUSA},
	{"ABBV", "ABBV", "AbbVie", valuation.MarketUSA},
	{"MRK", "MRK", "Merck", valuation.MarketUSA},
	{"AVGO", "AVGO", "Broadcom", valuation.MarketUSA},
	{"PEP", "PEP", "PepsiCo", valuation.MarketUSA},
	{"COST", "COST", "Costco", valuation.MarketUSA},
	{"ADBE", "ADBE", "Adobe", valuation.MarketUSA},
	{"TMO", "TMO", "Thermo Fisher", valuation.MarketUSA},
	{"CSCO", "CSCO", "Cisco", valuation.MarketUSA},
	{"CRM", "CRM", "Salesforce", valuation.MarketUSA},
	{"ACN", "ACN", "Accenture", valuation.MarketUSA},
	{"WMT", "WMT", "Walmart", valuation.MarketUSA},
	{"NFLX", "NFLX", "Netflix", valuation.MarketUSA},
}

var nasdaq100Fallback = []Constituent{
	{"AAPL", "AAPL", "Apple", valuation.MarketUSA},
	{"MSFT", "MSFT", "Microsoft", valuation.MarketUSA},
	{"GOOGL", "GOOGL", "Alphabet", valuation.MarketUSA},
	{"AMZN", "AMZN", "Amazon", valuation.MarketUSA},
	{"NVDA", "NVDA", "NVIDIA", valuation.MarketUSA},
	{"META", "META", "Meta", valuation.MarketUSA},
	{"TSLA", "TSLA", "Tesla", valuation.MarketUSA},
	{"AVGO", "AVGO", "Broadcom", valuation.MarketUSA},
	{"COST", "COST", "Costco", valuation.MarketUSA},
	{"NFLX", "NFLX", "Netflix", valuation.MarketUSA},
}

var nikkei225 = []Constituent{
	{"7203.T", "7203", "Toyota", valuation.MarketJapan},
	{"6758.T", "6758", "Sony", valuation.MarketJapan},
	{"6861.T", "6861", "Keyence", valuation.MarketJapan},
	{"9984.T", "9984", "SoftBank Group", valuation.MarketJapan},
	{"8306.T", "8306", "MUFG", valuation.MarketJapan},
	{"6902.T", "6902", "Denso", valuation.MarketJapan},
	{"9433.T", "9433", "KDDI", valuation.MarketJapan},
	{"4063.T", "4063", "Shin-Etsu Chemical", valuation.MarketJapan},
	{"6098.T", "6098", "Recruit", valuation.MarketJapan},
	{"8035.T", "8035", "Tokyo Electron", valuation.MarketJapan},
	{"7741.T", "7741", "HOYA", valuation.MarketJapan},
	{"4568.T", "4568", "Daiichi Sankyo", valuation.MarketJapan},
	{"6501.T", "6501", "Hitachi", valuation.MarketJapan},
	{"7267.T", "7267", "Honda", valuation.MarketJapan},
	{"4502.T", "4502", "Takeda", valuation.MarketJapan},
	{"6367.T", "6367", "Daikin", valuation.MarketJapan},
	{"8316.T", "8316", "SMFG", valuation.MarketJapan},
	{"9432.T", "9432", "NTT", valuation.MarketJapan},
	{"6594.T", "6594", "Nidec", valuation.MarketJapan},
	{"7974.T", "7974", "Nintendo", valuation.MarketJapan},
	{"4519.T", "4519", "Chugai Pharma", valuation.MarketJapan},
	{"6762.T", "6762", "TDK", valuation.MarketJapan},
	{"6981.T", "6981", "Murata Mfg", valuation.MarketJapan},
	{"3382.T", "3382", "Seven & i", valuation.MarketJapan},
	{"8058.T", "8058", "Mitsubishi Corp", valuation.MarketJapan},
	{"8031.T", "8031", "Mitsui & Co", valuation.MarketJapan},
	{"2914.T", "2914", "Japan Tobacco", valuation.MarketJapan},
	{"8001.T", "8001", "ITOCHU", valuation.MarketJapan},
	{"4661.T", "4661", "Oriental Land", valuation.MarketJapan},
	{"9983.T", "9983", "Fast Retailing", valuation.MarketJapan},
	{"6954.T", "6954", "Fanuc", valuation.MarketJapan},
	{"6857.T", "6857", "Advantest", valuation.MarketJapan},
	{"4503.T", "4503", "Astellas Pharma", valuation.MarketJapan},
	{"6752.T", "6752", "Panasonic", valuation.MarketJapan},
	{"7751.T", "7751", "Canon", valuation.MarketJapan},
	{"6301.T", "6301", "Komatsu", valuation.MarketJapan},
	{"4507.T", "4507", "Shionogi", valuation.MarketJapan},
	{"8411.T", "8411", "Mizuho FG", valuation.MarketJapan},
	{"6305.T", "6305", "Hitachi Construction", valuation.MarketJapan},
	{"2801.T", "2801", "Kikkoman", valuation.MarketJapan},
}

var euroStoxx50 = []Constituent{
	{"ASML.AS", "ASML", "ASML Holding", valuation.MarketEurope},
	{"MC.PA", "MC", "LVMH", valuation.MarketEurope},
	{"SAP.DE", "SAP", "SAP", valuation.MarketEurope},
	{"SIE.DE", "SIE", "Siemens", valuation.MarketEurope},
	{"TTE.PA", "TTE", "TotalEnergies", valuation.MarketEurope},
	{"OR.PA", "OR", "L'Oréal", valuation.MarketEurope},
	{"AIR.PA", "AIR", "Airbus", valuation.MarketEurope},
	{"SAN.PA", "SAN", "Sanofi", valuation.MarketEurope},
	{"ALV.DE", "ALV", "Allianz", valuation.MarketEurope},
	{"DTE.DE", "DTE", "Deutsche Telekom", valuation.MarketEurope},
	{"BNP.PA", "BNP", "BNP Paribas", valuation.MarketEurope},
	{"CS.PA", "CS", "AXA", valuation.MarketEurope},
	{"RMS.PA", "RMS", "Hermès", valuation.MarketEurope},
	{"CDI.PA", "CDI", "Christian Dior", valuation.MarketEurope},
	{"SU.PA", "SU", "Schneider Electric", valuation.MarketEurope},
	{"AI.PA", "AI", "Air Liquide", valuation.MarketEurope},
	{"EL.PA", "EL", "EssilorLuxottica", valuation.MarketEurope},
	{"BAS.DE", "BAS", "BASF", valuation.MarketEurope},
	{"ENEL.MI", "ENEL", "Enel", valuation.MarketEurope},
	{"ISP.MI", "ISP", "Intesa Sanpaolo", valuation.MarketEurope},
	{"IBE.MC", "IBE", "Iberdrola", valuation.MarketEurope},
	{"INGA.AS", "INGA", "ING Group", valuation.MarketEurope},
	{"MBG.DE", "MBG", "Mercedes-Benz", valuation.MarketEurope},
	{"BMW.DE", "BMW", "BMW", valuation.MarketEurope},
	{"ABI.BR", "ABI", "AB InBev", valuation.MarketEurope},
	{"AD.AS", "AD", "Ahold Delhaize", valuation.MarketEurope},
	{"MUV2.DE", "MUV2", "Munich Re", valuation.MarketEurope},
	{"DPW.DE", "DPW", "DHL Group", valuation.MarketEurope},
	{"PHIA.AS", "PHIA", "Philips", valuation.MarketEurope},
	{"VOW3.DE", "VOW3", "Volkswagen", valuation.MarketEurope},
}

// builtinList returns the built-in list for idx, or nil.
func builtinList(idx Index) []Constituent {
	switch idx {
	case IndexKOSPI200:
		return kospi200
	case IndexSP500:
		return sp500Fallback
	case IndexNasdaq100:
		return nasdaq100Fallback
	case IndexNikkei225:
		return nikkei225
	case IndexEuroStoxx50:
		return euroStoxx50
	default:
		return nil
	}
}
