package ledger

// DefaultChart is the built-in SYSCOHADA chart-of-accounts template cloned
// into every new client file. Parent links are expressed by account number;
// class roots are centralizing, grouping accounts collective, and only the
// leaf detail accounts receive postings.
var DefaultChart = []AccountTemplate{
	// Classe 1 — Ressources durables
	{Number: "1", Label: "Comptes de ressources durables", Nature: NatureCentralizing},
	{Number: "10", Label: "Capital", Nature: NatureCollective, ParentNumber: "1", Type: TypeLiability},
	{Number: "101", Label: "Capital social", Nature: NatureDetail, ParentNumber: "10", Type: TypeLiability, UsualSide: SideCredit},
	{Number: "106", Label: "Réserves", Nature: NatureDetail, ParentNumber: "10", Type: TypeLiability, UsualSide: SideCredit},
	{Number: "12", Label: "Report à nouveau", Nature: NatureCollective, ParentNumber: "1", Type: TypeLiability},
	{Number: "121", Label: "Report à nouveau créditeur", Nature: NatureDetail, ParentNumber: "12", Type: TypeLiability, UsualSide: SideCredit},
	{Number: "16", Label: "Emprunts et dettes assimilées", Nature: NatureCollective, ParentNumber: "1", Type: TypeLiability},
	{Number: "162", Label: "Emprunts auprès des établissements de crédit", Nature: NatureDetail, ParentNumber: "16", Type: TypeLiability, UsualSide: SideCredit},

	// Classe 2 — Actif immobilisé
	{Number: "2", Label: "Comptes d'actif immobilisé", Nature: NatureCentralizing},
	{Number: "21", Label: "Immobilisations incorporelles", Nature: NatureCollective, ParentNumber: "2", Type: TypeAsset},
	{Number: "213", Label: "Logiciels", Nature: NatureDetail, ParentNumber: "21", Type: TypeAsset, UsualSide: SideDebit},
	{Number: "24", Label: "Matériel", Nature: NatureCollective, ParentNumber: "2", Type: TypeAsset},
	{Number: "241", Label: "Matériel et outillage industriel", Nature: NatureDetail, ParentNumber: "24", Type: TypeAsset, UsualSide: SideDebit},
	{Number: "244", Label: "Matériel et mobilier de bureau", Nature: NatureDetail, ParentNumber: "24", Type: TypeAsset, UsualSide: SideDebit},
	{Number: "28", Label: "Amortissements", Nature: NatureCollective, ParentNumber: "2", Type: TypeAsset},
	{Number: "284", Label: "Amortissements du matériel", Nature: NatureDetail, ParentNumber: "28", Type: TypeAsset, UsualSide: SideCredit},

	// Classe 3 — Stocks
	{Number: "3", Label: "Comptes de stocks", Nature: NatureCentralizing},
	{Number: "31", Label: "Marchandises", Nature: NatureCollective, ParentNumber: "3", Type: TypeAsset},
	{Number: "311", Label: "Marchandises A", Nature: NatureDetail, ParentNumber: "31", Type: TypeAsset, UsualSide: SideDebit},

	// Classe 4 — Tiers
	{Number: "4", Label: "Comptes de tiers", Nature: NatureCentralizing},
	{Number: "40", Label: "Fournisseurs et comptes rattachés", Nature: NatureCollective, ParentNumber: "4", Type: TypePartnerVendor},
	{Number: "401", Label: "Fournisseurs, dettes en compte", Nature: NatureCollective, ParentNumber: "40", Type: TypePartnerVendor},
	{Number: "4011", Label: "Fournisseurs", Nature: NatureDetail, ParentNumber: "401", Type: TypePartnerVendor, UsualSide: SideCredit, LettrableByDefault: true},
	{Number: "408", Label: "Fournisseurs, factures non parvenues", Nature: NatureDetail, ParentNumber: "40", Type: TypePartnerVendor, UsualSide: SideCredit},
	{Number: "41", Label: "Clients et comptes rattachés", Nature: NatureCollective, ParentNumber: "4", Type: TypePartnerClient},
	{Number: "411", Label: "Clients", Nature: NatureCollective, ParentNumber: "41", Type: TypePartnerClient},
	{Number: "4111", Label: "Clients", Nature: NatureDetail, ParentNumber: "411", Type: TypePartnerClient, UsualSide: SideDebit, LettrableByDefault: true},
	{Number: "42", Label: "Personnel", Nature: NatureCollective, ParentNumber: "4", Type: TypePartnerEmployee},
	{Number: "421", Label: "Personnel, avances et acomptes", Nature: NatureDetail, ParentNumber: "42", Type: TypePartnerEmployee, UsualSide: SideDebit},
	{Number: "422", Label: "Personnel, rémunérations dues", Nature: NatureDetail, ParentNumber: "42", Type: TypePartnerEmployee, UsualSide: SideCredit, LettrableByDefault: true},
	{Number: "43", Label: "Organismes sociaux", Nature: NatureCollective, ParentNumber: "4", Type: TypePartnerAssociate},
	{Number: "431", Label: "Sécurité sociale", Nature: NatureDetail, ParentNumber: "43", Type: TypePartnerAssociate, UsualSide: SideCredit},
	{Number: "44", Label: "État et collectivités publiques", Nature: NatureCollective, ParentNumber: "4", Type: TypePartnerState},
	{Number: "441", Label: "État, impôt sur les bénéfices", Nature: NatureDetail, ParentNumber: "44", Type: TypePartnerState, UsualSide: SideCredit},
	{Number: "4431", Label: "TVA facturée sur ventes", Nature: NatureDetail, ParentNumber: "44", Type: TypePartnerState, UsualSide: SideCredit},
	{Number: "4452", Label: "TVA récupérable sur achats", Nature: NatureDetail, ParentNumber: "44", Type: TypePartnerState, UsualSide: SideDebit},
	{Number: "46", Label: "Associés et groupe", Nature: NatureCollective, ParentNumber: "4", Type: TypePartnerAssociate},
	{Number: "462", Label: "Associés, comptes courants", Nature: NatureDetail, ParentNumber: "46", Type: TypePartnerAssociate, UsualSide: SideCredit},

	// Classe 5 — Trésorerie
	{Number: "5", Label: "Comptes de trésorerie", Nature: NatureCentralizing},
	{Number: "52", Label: "Banques", Nature: NatureCollective, ParentNumber: "5", Type: TypeTreasuryAsset},
	{Number: "521", Label: "Banques locales", Nature: NatureDetail, ParentNumber: "52", Type: TypeTreasuryAsset, UsualSide: SideDebit},
	{Number: "56", Label: "Banques, crédits de trésorerie", Nature: NatureCollective, ParentNumber: "5", Type: TypeTreasuryLiability},
	{Number: "561", Label: "Crédits de trésorerie", Nature: NatureDetail, ParentNumber: "56", Type: TypeTreasuryLiability, UsualSide: SideCredit},
	{Number: "57", Label: "Caisse", Nature: NatureCollective, ParentNumber: "5", Type: TypeTreasuryAsset},
	{Number: "571", Label: "Caisse siège social", Nature: NatureDetail, ParentNumber: "57", Type: TypeTreasuryAsset, UsualSide: SideDebit},

	// Classe 6 — Charges
	{Number: "6", Label: "Comptes de charges", Nature: NatureCentralizing},
	{Number: "60", Label: "Achats et variations de stocks", Nature: NatureCollective, ParentNumber: "6", Type: TypeExpense},
	{Number: "601", Label: "Achats de marchandises", Nature: NatureDetail, ParentNumber: "60", Type: TypeExpense, UsualSide: SideDebit},
	{Number: "605", Label: "Autres achats", Nature: NatureDetail, ParentNumber: "60", Type: TypeExpense, UsualSide: SideDebit},
	{Number: "62", Label: "Services extérieurs A", Nature: NatureCollective, ParentNumber: "6", Type: TypeExpense},
	{Number: "622", Label: "Locations et charges locatives", Nature: NatureDetail, ParentNumber: "62", Type: TypeExpense, UsualSide: SideDebit},
	{Number: "627", Label: "Publicité, publications", Nature: NatureDetail, ParentNumber: "62", Type: TypeExpense, UsualSide: SideDebit},
	{Number: "64", Label: "Impôts et taxes", Nature: NatureCollective, ParentNumber: "6", Type: TypeExpense},
	{Number: "641", Label: "Impôts et taxes directs", Nature: NatureDetail, ParentNumber: "64", Type: TypeExpense, UsualSide: SideDebit},
	{Number: "66", Label: "Charges de personnel", Nature: NatureCollective, ParentNumber: "6", Type: TypeExpense},
	{Number: "661", Label: "Rémunérations directes", Nature: NatureDetail, ParentNumber: "66", Type: TypeExpense, UsualSide: SideDebit},
	{Number: "67", Label: "Frais financiers", Nature: NatureCollective, ParentNumber: "6", Type: TypeExpense},
	{Number: "671", Label: "Intérêts des emprunts", Nature: NatureDetail, ParentNumber: "67", Type: TypeExpense, UsualSide: SideDebit},

	// Classe 7 — Produits
	{Number: "7", Label: "Comptes de produits", Nature: NatureCentralizing},
	{Number: "70", Label: "Ventes", Nature: NatureCollective, ParentNumber: "7", Type: TypeRevenue},
	{Number: "701", Label: "Ventes de marchandises", Nature: NatureDetail, ParentNumber: "70", Type: TypeRevenue, UsualSide: SideCredit},
	{Number: "706", Label: "Services vendus", Nature: NatureDetail, ParentNumber: "70", Type: TypeRevenue, UsualSide: SideCredit},
	{Number: "707", Label: "Produits accessoires", Nature: NatureDetail, ParentNumber: "70", Type: TypeRevenue, UsualSide: SideCredit},
	{Number: "77", Label: "Revenus financiers", Nature: NatureCollective, ParentNumber: "7", Type: TypeRevenue},
	{Number: "771", Label: "Intérêts de prêts", Nature: NatureDetail, ParentNumber: "77", Type: TypeRevenue, UsualSide: SideCredit},
}
