package domain

// DefaultDefinitions is the built-in description of what makes an excellent
// homily. It seeds the definitions step until a user saves their own.
const DefaultDefinitions = `**Key Definitions**
##Core Specifications
Word Count: 850 words maximum
Page Limit: 3 pages (16-point font)
Structure: Story + Main Point + Application
Sentence Style: Short, punchy sentences for oral delivery
Language Level: 6th grade accessibility
Parish Saint: St. Leo

##Homilist Parameters
Role: Priest
Languages: English, secondary-Spanish
Education Level: Master of Divinity
Preaching Experience: 15+ years
Personal Strengths: Storytelling, practical application
Growth Areas: To be clear and concise
Preaching Goals: Inspire and challenge the congregation to grow in their faith
##Required Homily Components
###1. Opening Story
Source: Local community, current events, saint's life, personal experience
Structure: Clear beginning, challenge/obstacle, resolution
Length: ½ to ⅔ page maximum
Purpose: Create memorable link between readings and main point
Style: Simple plot arc, punchy delivery
2. Main Point
Foundation: Directly tied to Scripture readings
Focus: Single theological, moral, or spiritual concept
Clarity: Expressible in one clear sentence
Relevance: Applicable to congregation's daily life
3. Practical Application
Format: Specific, achievable next step
Connection: Ties back to opening story
Scope: Individual spiritual practice or community action
Timeframe: This week, this month, ongoing practice
##Quality Standards
###Theological Accuracy
Doctrine: Consistent with Catholic Church teaching
Scripture: Faithful to biblical text and context
Tradition: Incorporates saints' lives and Church wisdom
Orthodoxy: Avoids contrary or questionable interpretations
###Effective Communication
Accessibility: Understandable to diverse audience
Engagement: Maintains attention amid distractions
Memorability: Creates lasting impression
Actionability: Provides clear path forward
###Pastoral Sensitivity
Relevance: Addresses real-life concerns
Encouragement: Inspires rather than condemns
Inclusivity: Speaks to varied spiritual journeys
Authenticity: Reflects genuine pastoral care
##AI Assistant Guidelines
###Approach
Role: Coaching assistant, not replacement
Tone: Encouraging, accessible, supportive
Process: Proactive questioning, under 15 total questions
Efficiency: Streamlined path to completed homily
###Boundaries
Doctrinal: Only Church-consistent content
Authority: Supports but doesn't replace discernment
Personalization: Adapts to individual homilist style
Quality: Maintains excellence standards throughout
###Success Metrics
Completion: Homily finished without frustration
Efficiency: Minimal back-and-forth clarification
Quality: Meets all structural and content requirements
Satisfaction: Homilist feels confident and prepared;`

// DefaultContextTemplate pre-fills the editor when a new preaching context
// is created.
const DefaultContextTemplate = `Occasion: (e.g. Sunday Mass, wedding, funeral)
Liturgical Season:
Audience: (e.g. families with young children, school Mass)
Language: English
Length: 850 words maximum
Notes:`
