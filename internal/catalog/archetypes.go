package catalog

import "github.com/ppiankov/dii/internal/model"

func sig(id string, phrases ...string) Signal {
	return Signal{ID: id, Phrases: phrases}
}

func bench(p25, p50, p75, p90 float64) Benchmark {
	return Benchmark{P25: p25, P50: p50, P75: p75, P90: p90}
}

// builtinArchetypes returns a fresh copy of the archetype table on every call.
func builtinArchetypes() [model.ArchetypeCount]Archetype {
	return [model.ArchetypeCount]Archetype{
		{
			ID:                    model.HybridCommerce,
			Name:                  "Hybrid Commerce",
			CoreDefinition:        "Technology enhances but does not replace the physical business core",
			DigitalDependency:     Range{30, 60},
			InterruptionTolerance: Range{24, 48},
			CyberImpact:           Range{5, 20},
			Required: []Signal{
				sig("physical_stores", "physical store", "brick and mortar", "sucursal", "tienda", "branches"),
				sig("significant_physical_inventory", "inventory", "inventario", "stock", "warehouse"),
				sig("pos_main_technology", "point of sale", "pos terminal", "pos system", "punto de venta"),
			},
			Prohibited: []Signal{
				sig("purely_digital", "purely digital", "100% online", "digital only", "online only"),
				sig("no_own_inventory", "no inventory", "asset-light", "asset light"),
				sig("pure_marketplace", "pure marketplace", "third-party sellers only"),
			},
			Optional: []Signal{
				sig("ecommerce_present", "e-commerce", "ecommerce", "online store", "tienda en linea"),
				sig("mobile_app", "mobile app", "app store", "aplicacion"),
				sig("digital_loyalty_program", "loyalty program", "rewards program", "programa de lealtad"),
			},
			PrimaryRisks:  []string{"pos_malware", "skimming_ecommerce", "ransomware_stores"},
			Keywords:      []string{"retail", "tienda", "comercio", "venta", "almacen", "sucursal"},
			BoostKeywords: []string{"tienda", "sucursal", "retail", "pos", "inventario"},
			Priority:      1,
			Baseline:      1.75,
			Curve:         [7]float64{2.5, 3.8, 4.5, 5.5, 6.8, 7.5, 8.2},
			Benchmarks: [model.DimensionCount]Benchmark{
				bench(4, 12, 24, 48),
				bench(500_000, 200_000, 100_000, 50_000),
				bench(35, 25, 15, 10),
				bench(70, 50, 35, 20),
				bench(4.0, 3.0, 2.0, 1.5),
			},
			HourlyLoss: "125K",
			Systems:    50,
			Impact:     ImpactDistribution{Operational: 40, Trust: 25, Compliance: 20, Strategic: 15},
		},
		{
			ID:                    model.CriticalSoftware,
			Name:                  "Critical Software",
			CoreDefinition:        "Software IS the product, not a delivery channel",
			DigitalDependency:     Range{70, 90},
			InterruptionTolerance: Range{6, 24},
			CyberImpact:           Range{15, 50},
			Required: []Signal{
				sig("b2b_saas_model", "saas", "software as a service", "subscription software"),
				sig("dependent_enterprise_clients", "enterprise client", "enterprise customer", "business customers", "corporate clients"),
				sig("continuous_software_updates", "continuous deployment", "continuous delivery", "weekly releases", "ci/cd"),
			},
			Prohibited: []Signal{
				sig("physical_inventory", "physical inventory", "warehouse stock"),
				sig("manual_operations", "manual operations", "manual process", "paper-based"),
				sig("in_person_service_primary", "in-person service", "face-to-face", "walk-in"),
			},
			Optional: []Signal{
				sig("sla_99_9_percent", "99.9", "99.99", "uptime sla"),
				sig("public_api", "public api", "rest api", "developer api", "graphql"),
				sig("enterprise_integrations", "integrations", "sso", "erp integration"),
			},
			PrimaryRisks:  []string{"supply_chain_attack", "api_exploitation", "ransomware_cloud"},
			Keywords:      []string{"software", "saas", "cloud", "platform", "api", "b2b", "enterprise"},
			BoostKeywords: []string{"saas", "software", "api", "cloud", "b2b", "enterprise"},
			Priority:      2,
			Baseline:      1.00,
			Curve:         [7]float64{2.0, 3.5, 4.0, 4.8, 6.0, 7.0, 8.0},
			Benchmarks: [model.DimensionCount]Benchmark{
				bench(2, 6, 12, 24),
				bench(1_000_000, 400_000, 150_000, 75_000),
				bench(40, 30, 20, 10),
				bench(80, 60, 40, 25),
				bench(5.0, 3.5, 2.5, 1.8),
			},
			HourlyLoss: "250K",
			Systems:    200,
			Impact:     ImpactDistribution{Operational: 25, Trust: 20, Compliance: 15, Strategic: 40},
		},
		{
			ID:                    model.DataServices,
			Name:                  "Data Services",
			CoreDefinition:        "Data IS the product, not a byproduct",
			DigitalDependency:     Range{80, 95},
			InterruptionTolerance: Range{4, 12},
			CyberImpact:           Range{25, 75},
			Required: []Signal{
				sig("data_as_main_product", "data provider", "data products", "datasets", "credit bureau", "market intelligence"),
				sig("bulk_query_apis", "data api", "bulk query", "data feed", "query api"),
				sig("continuous_dataset_updates", "real-time data", "daily updates", "continuously updated"),
			},
			Prohibited: []Signal{
				sig("physical_product_primary", "manufacturing", "manufacturer", "physical product"),
				sig("in_person_services", "in-person", "on-site service"),
				sig("core_financial_transactions", "payment processing", "deposits", "lending"),
			},
			Optional: []Signal{
				sig("proprietary_ml_models", "machine learning", "ml models", "predictive models"),
				sig("data_partnerships", "data partnership", "data sharing agreement"),
				sig("privacy_certifications", "gdpr", "privacy certification", "iso 27701"),
			},
			PrimaryRisks:  []string{"mass_data_breach", "dataset_poisoning", "insider_threats"},
			Keywords:      []string{"datos", "analytics", "intelligence", "insights", "bureau", "informacion"},
			BoostKeywords: []string{"data", "analytics", "insights", "bureau", "intelligence"},
			Priority:      4,
			Baseline:      0.70,
			Curve:         [7]float64{1.8, 3.0, 3.5, 4.2, 5.5, 6.5, 7.8},
			Benchmarks: [model.DimensionCount]Benchmark{
				bench(6, 18, 36, 72),
				bench(800_000, 350_000, 150_000, 60_000),
				bench(30, 20, 12, 8),
				bench(65, 45, 30, 15),
				bench(3.5, 2.5, 1.8, 1.3),
			},
			HourlyLoss: "180K",
			Systems:    150,
			Impact:     ImpactDistribution{Operational: 20, Trust: 25, Compliance: 20, Strategic: 35},
		},
		{
			ID:                    model.DigitalEcosystem,
			Name:                  "Digital Ecosystem",
			CoreDefinition:        "Value lives in the network, not in inventory",
			DigitalDependency:     Range{95, 100},
			InterruptionTolerance: Range{0, 6},
			CyberImpact:           Range{50, 200},
			Required: []Signal{
				sig("two_or_more_sided_model", "marketplace", "two-sided", "multi-sided", "buyers and sellers", "riders and drivers"),
				sig("evident_network_effects", "network effect", "millions of users", "community of"),
				sig("no_own_inventory", "no inventory", "asset-light", "asset light", "does not own"),
			},
			Prohibited: []Signal{
				sig("own_manufacturing", "manufacturing", "manufacturer", "factory", "fabrica"),
				sig("one_sided_services", "one-sided", "single-sided"),
				sig("significant_inventory", "significant inventory", "large inventory", "warehouse stock"),
			},
			Optional: []Signal{
				sig("exponential_user_growth", "user growth", "hypergrowth", "exponential growth"),
				sig("third_party_apis", "third-party api", "partner api", "open api"),
				sig("partner_program", "partner program", "affiliate program", "developer program"),
			},
			PrimaryRisks:  []string{"platform_takeover", "massive_ddos", "coordinated_fraud"},
			Keywords:      []string{"marketplace", "platform", "booking", "delivery", "rideshare", "p2p"},
			BoostKeywords: []string{"marketplace", "platform", "booking", "app", "riders", "sellers"},
			Priority:      3,
			Baseline:      0.60,
			Curve:         [7]float64{1.5, 2.8, 3.2, 3.8, 5.0, 6.2, 7.5},
			Benchmarks: [model.DimensionCount]Benchmark{
				bench(3, 8, 16, 32),
				bench(1_200_000, 500_000, 200_000, 80_000),
				bench(45, 35, 25, 15),
				bench(85, 70, 50, 30),
				bench(6.0, 4.0, 2.8, 2.0),
			},
			HourlyLoss: "300K",
			Systems:    500,
			Impact:     ImpactDistribution{Operational: 20, Trust: 45, Compliance: 15, Strategic: 20},
		},
		{
			ID:                    model.FinancialServices,
			Name:                  "Financial Services",
			CoreDefinition:        "Every transaction is critical, every second counts",
			DigitalDependency:     Range{95, 100},
			InterruptionTolerance: Range{0, 2},
			CyberImpact:           Range{100, 500},
			Required: []Signal{
				sig("regulated_financial_license", "banking license", "regulated by", "licensed bank", "cnbv", "financial regulator"),
				sig("core_payment_processing", "payment processing", "payments", "transfers", "card issuing", "pagos"),
				sig("banking_network_connection", "spei", "swift", "card network", "ach transfers", "interbank"),
			},
			Prohibited: []Signal{
				sig("physical_inventory_primary", "physical inventory", "merchandise"),
				sig("mostly_non_financial_services", "non-financial", "consulting services"),
				sig("offline_operation_possible", "offline operation", "works offline"),
			},
			Optional: []Signal{
				sig("pci_dss_compliance", "pci", "pci-dss", "pci dss"),
				sig("swift_connection", "swift"),
				sig("crypto_operations", "crypto", "bitcoin", "stablecoin"),
			},
			PrimaryRisks:  []string{"transactional_fraud", "ddos_extortion", "apt_nation_state"},
			Keywords:      []string{"banco", "fintech", "pago", "credito", "wallet", "remesa", "bolsa"},
			BoostKeywords: []string{"bank", "fintech", "payment", "wallet", "credit", "financial"},
			Priority:      5,
			Baseline:      0.40,
			Curve:         [7]float64{1.2, 2.5, 3.0, 3.5, 4.8, 6.0, 7.2},
			Benchmarks: [model.DimensionCount]Benchmark{
				bench(1, 3, 6, 12),
				bench(2_000_000, 800_000, 300_000, 100_000),
				bench(50, 40, 30, 20),
				bench(90, 75, 55, 35),
				bench(7.0, 5.0, 3.5, 2.5),
			},
			HourlyLoss: "500K",
			Systems:    1000,
			Impact:     ImpactDistribution{Operational: 25, Trust: 30, Compliance: 35, Strategic: 10},
		},
		{
			ID:                    model.LegacyInfrastructure,
			Name:                  "Legacy Infrastructure",
			CoreDefinition:        "The old is critical, the new is a patch",
			DigitalDependency:     Range{20, 50},
			InterruptionTolerance: Range{2, 24},
			CyberImpact:           Range{30, 150},
			Required: []Signal{
				sig("core_systems_10_years_plus", "legacy", "mainframe", "cobol", "decades-old"),
				sig("multiple_integration_layers", "middleware", "integration layer", "custom interfaces"),
				sig("specific_hardware_dependency", "scada", "plc", "ot network", "industrial control", "proprietary hardware"),
			},
			Prohibited: []Signal{
				sig("cloud_native", "cloud-native", "cloud native", "serverless", "kubernetes"),
				sig("agile_development", "agile", "scrum", "devops"),
				sig("frequent_updates", "frequent releases", "continuous deployment", "daily deploys"),
			},
			Optional: []Signal{
				sig("scarce_documentation", "undocumented", "little documentation", "scarce documentation"),
				sig("staff_near_retirement", "retiring", "near retirement"),
				sig("modernization_in_progress", "modernization", "digital transformation", "migration project"),
			},
			PrimaryRisks:  []string{"ransomware_without_backup", "ot_sabotage", "firmware_supply_chain"},
			Keywords:      []string{"gobierno", "utility", "energia", "estatal", "publico", "infraestructura"},
			BoostKeywords: []string{"gobierno", "estatal", "publico", "federal", "nacional"},
			Priority:      6,
			Baseline:      0.35,
			Curve:         [7]float64{1.0, 2.0, 2.5, 2.8, 4.0, 5.2, 6.5},
			Benchmarks: [model.DimensionCount]Benchmark{
				bench(8, 24, 48, 96),
				bench(300_000, 150_000, 75_000, 40_000),
				bench(25, 18, 10, 5),
				bench(60, 40, 25, 12),
				bench(3.0, 2.2, 1.5, 1.1),
			},
			HourlyLoss: "80K",
			Systems:    30,
			Impact:     ImpactDistribution{Operational: 45, Trust: 20, Compliance: 25, Strategic: 10},
		},
		{
			ID:                    model.SupplyChain,
			Name:                  "Supply Chain",
			CoreDefinition:        "Digital visibility matters as much as physical movement",
			DigitalDependency:     Range{40, 70},
			InterruptionTolerance: Range{12, 48},
			CyberImpact:           Range{20, 80},
			Required: []Signal{
				sig("own_fleet_or_logistics_control", "fleet", "trucks", "logistics network", "distribution centers", "flota"),
				sig("real_time_tracking", "tracking", "gps", "rastreo", "shipment visibility"),
				sig("edi_api_integrations", "edi", "shipping api", "carrier integration", "wms"),
			},
			Prohibited: []Signal{
				sig("no_physical_movement", "no physical movement", "no shipping"),
				sig("purely_digital_services", "purely digital", "digital only"),
				sig("no_logistics_infrastructure", "no logistics", "outsources all logistics"),
			},
			Optional: []Signal{
				sig("logistics_certifications", "c-tpat", "oea", "iso 28000"),
				sig("cold_chain", "cold chain", "cadena de frio", "refrigerated"),
				sig("cross_docking", "cross-docking", "cross docking"),
			},
			PrimaryRisks:  []string{"gps_spoofing", "ransomware_wms", "partner_compromise"},
			Keywords:      []string{"logistica", "transporte", "envio", "paqueteria", "almacen", "distribucion"},
			BoostKeywords: []string{"logistics", "shipping", "delivery", "warehouse", "fleet", "3pl"},
			Priority:      7,
			Baseline:      0.60,
			Curve:         [7]float64{1.8, 3.0, 3.5, 4.0, 5.2, 6.5, 7.8},
			Benchmarks: [model.DimensionCount]Benchmark{
				bench(4, 10, 20, 40),
				bench(1_500_000, 600_000, 250_000, 100_000),
				bench(38, 28, 18, 12),
				bench(75, 55, 38, 22),
				bench(5.5, 3.8, 2.6, 1.9),
			},
			HourlyLoss: "200K",
			Systems:    250,
			Impact:     ImpactDistribution{Operational: 30, Trust: 40, Compliance: 20, Strategic: 10},
		},
		{
			ID:                    model.RegulatedInformation,
			Name:                  "Regulated Information",
			CoreDefinition:        "Compliance is operations, privacy is survival",
			DigitalDependency:     Range{60, 80},
			InterruptionTolerance: Range{2, 12},
			CyberImpact:           Range{40, 120},
			Required: []Signal{
				sig("mandatory_certifications", "accreditation", "certified by", "licensed", "mandatory certification"),
				sig("frequent_regulatory_audits", "regulatory audit", "compliance audit", "inspections"),
				sig("core_sensitive_personal_data", "patient", "medical records", "student records", "personal data", "expediente"),
			},
			Prohibited: []Signal{
				sig("public_data_only", "public data only", "open data only"),
				sig("no_specific_regulation", "unregulated", "no specific regulation"),
				sig("full_anonymization", "fully anonymized", "full anonymization"),
			},
			Optional: []Signal{
				sig("hipaa_compliance", "hipaa"),
				sig("iso_27001", "iso 27001", "iso27001"),
				sig("sox_compliance", "sox", "sarbanes"),
			},
			PrimaryRisks:  []string{"double_extortion_ransomware", "apt_sensitive_data", "medical_insider"},
			Keywords:      []string{"hospital", "clinica", "salud", "educacion", "seguros", "laboratorio"},
			BoostKeywords: []string{"health", "medical", "hospital", "clinic", "insurance", "education"},
			Priority:      8,
			Baseline:      0.55,
			Curve:         [7]float64{1.5, 2.8, 3.2, 3.7, 5.0, 6.3, 7.5},
			Benchmarks: [model.DimensionCount]Benchmark{
				bench(2, 6, 12, 24),
				bench(1_800_000, 700_000, 280_000, 110_000),
				bench(48, 38, 28, 18),
				bench(88, 72, 52, 32),
				bench(6.5, 4.5, 3.2, 2.3),
			},
			HourlyLoss: "150K",
			Systems:    180,
			Impact:     ImpactDistribution{Operational: 20, Trust: 25, Compliance: 40, Strategic: 15},
		},
	}
}
