// Package companies suggests employers for a target role.
package companies

import (
	"slices"
	"strings"

	"github.com/futig/career-console/internal/entity"
)

// FitScore derives a 0-100 company fit from the company's declared fit
// level and the résumé match score.
func FitScore(level entity.FitLevel, matchScore int) int {
	strong := matchScore >= 60
	if level == entity.FitHigh {
		if strong {
			return 92
		}
		return 72
	}
	if strong {
		return 74
	}
	return 58
}

var catalog = map[string][]entity.Company{
	"full stack developer": {
		{Name: "Google", Logo: "🔵", Type: "MNC", Fit: entity.FitHigh, Why: "React, Node, Go — matches your stack", Hiring: "SWE, Full Stack", Salary: "₹20–45 LPA"},
		{Name: "Razorpay", Logo: "🟣", Type: "Startup", Fit: entity.FitHigh, Why: "React + Node heavy, loves T-shaped devs", Hiring: "Full Stack Engineer", Salary: "₹18–35 LPA"},
		{Name: "Swiggy", Logo: "🟠", Type: "Startup", Fit: entity.FitHigh, Why: "Fast-paced full stack culture, great comp", Hiring: "SDE-II, Full Stack", Salary: "₹20–40 LPA"},
		{Name: "Infosys", Logo: "🔷", Type: "Service", Fit: entity.FitMedium, Why: "Good for freshers, large scale projects", Hiring: "System Engineer", Salary: "₹3.5–6 LPA"},
		{Name: "Atlassian", Logo: "🔵", Type: "Product", Fit: entity.FitHigh, Why: "React + REST APIs across all products", Hiring: "Full Stack Developer", Salary: "₹25–50 LPA"},
		{Name: "Zepto", Logo: "🟡", Type: "Startup", Fit: entity.FitMedium, Why: "High growth, React Native + Node", Hiring: "SDE Full Stack", Salary: "₹15–30 LPA"},
	},
	"data scientist": {
		{Name: "Amazon", Logo: "🟠", Type: "MNC", Fit: entity.FitHigh, Why: "Heavy ML/DS, Python + SQL stack", Hiring: "Data Scientist L4-L5", Salary: "₹25–55 LPA"},
		{Name: "Flipkart", Logo: "🟡", Type: "Product", Fit: entity.FitHigh, Why: "Strong DS team, recommendation systems", Hiring: "Data Scientist", Salary: "₹20–40 LPA"},
		{Name: "PhonePe", Logo: "🟣", Type: "Fintech", Fit: entity.FitHigh, Why: "Fraud detection + ML pipelines", Hiring: "Data Scientist", Salary: "₹18–35 LPA"},
		{Name: "Mu Sigma", Logo: "🔵", Type: "Service", Fit: entity.FitMedium, Why: "Analytics-first, great for freshers", Hiring: "Decision Scientist", Salary: "₹4–8 LPA"},
		{Name: "CRED", Logo: "⚫", Type: "Startup", Fit: entity.FitMedium, Why: "User analytics, Python + Spark", Hiring: "Data Analyst/Scientist", Salary: "₹15–28 LPA"},
		{Name: "Fractal", Logo: "🔷", Type: "Service", Fit: entity.FitHigh, Why: "Pure analytics company, diverse ML projects", Hiring: "Data Scientist", Salary: "₹8–18 LPA"},
	},
}

var defaultCompanies = []entity.Company{
	{Name: "Google", Logo: "🔵", Type: "MNC", Fit: entity.FitHigh, Why: "Top employer for tech globally", Hiring: "Software Engineer", Salary: "₹20–50 LPA"},
	{Name: "Microsoft", Logo: "🔵", Type: "MNC", Fit: entity.FitHigh, Why: "Diverse tech roles, great culture", Hiring: "SDE", Salary: "₹25–55 LPA"},
	{Name: "Razorpay", Logo: "🟣", Type: "Startup", Fit: entity.FitHigh, Why: "Fast-growing fintech, excellent comp", Hiring: "Engineer", Salary: "₹18–35 LPA"},
	{Name: "Infosys", Logo: "🔷", Type: "Service", Fit: entity.FitMedium, Why: "Large scale, good for freshers", Hiring: "System Engineer", Salary: "₹3.5–6 LPA"},
	{Name: "Swiggy", Logo: "🟠", Type: "Startup", Fit: entity.FitMedium, Why: "High-growth consumer tech", Hiring: "SDE", Salary: "₹15–30 LPA"},
	{Name: "Freshworks", Logo: "🟢", Type: "Product", Fit: entity.FitHigh, Why: "SaaS product company, strong eng culture", Hiring: "Engineer", Salary: "₹15–30 LPA"},
}

// ForRole returns the companies for role, best fit first
func ForRole(role string, matchScore int) []entity.Company {
	src, ok := catalog[strings.ToLower(strings.TrimSpace(role))]
	if !ok {
		src = defaultCompanies
	}

	out := slices.Clone(src)
	for i := range out {
		out[i].FitScore = FitScore(out[i].Fit, matchScore)
	}
	slices.SortStableFunc(out, func(a, b entity.Company) int {
		return b.FitScore - a.FitScore
	})

	return out
}
