package game

// Verb patterns shared by several variants.
var (
	lookVerbs = []string{"look", "l"}
	goVerbs   = []string{"go", "walk"}
	takeVerbs = []string{"get", "take", "pick"}

	positionVerbs  = []string{"sit", "stand", "lean", "kneel", "crouch", "lie"}
	positionPreps  = []string{"on", "against", "under", "beside", "next to"}
	placementVerbs = []string{"put", "place", "position"}
	placementPreps = []string{"on", "under", "beside", "next to"}
)

// variantSpecs declares the inheritance, grammars and default messages of
// every variant. The registry of a world is built from it.
func variantSpecs() map[Variant]variantSpec {
	return map[Variant]variantSpec{
		VariantWorld: {
			grammars: []Grammar{
				{Verbs: []string{"help"}, Handler: helpCommand},
			},
			messages: worldMessages,
		},
		VariantThing: {
			grammars: []Grammar{
				{Verbs: lookVerbs, Dobj: RoleSelf, Handler: lookAtCommand},
				{Verbs: lookVerbs, Preps: []string{"at"}, Iobj: RoleSelf, Handler: lookAtCommand},
			},
		},
		VariantPlace: {
			parents: []Variant{VariantThing},
			grammars: []Grammar{
				{Verbs: lookVerbs, Handler: lookHereCommand},
			},
		},
		VariantExit: {
			parents: []Variant{VariantThing},
			grammars: []Grammar{
				{Verbs: goVerbs, Dobj: RoleSelf, Handler: goCommand},
				{Verbs: goVerbs, Preps: []string{"through"}, Iobj: RoleSelf, Handler: goCommand},
			},
			messages: exitMessages,
		},
		VariantOpenableExit: {
			parents: []Variant{VariantExit, VariantOpenable},
			grammars: []Grammar{
				{Verbs: goVerbs, Dobj: RoleSelf, Handler: goOpenableCommand},
				{Verbs: goVerbs, Preps: []string{"through"}, Iobj: RoleSelf, Handler: goOpenableCommand},
			},
			messages: openableExitMessages,
		},
		VariantLockableExit: {
			parents: []Variant{VariantOpenableExit, VariantLockable},
		},
		VariantOpenable: {
			grammars: []Grammar{
				{Verbs: []string{"open"}, Dobj: RoleSelf, Handler: openCommand},
				{Verbs: []string{"close"}, Dobj: RoleSelf, Handler: closeCommand},
			},
			messages: openableMessages,
		},
		VariantLockable: {
			parents: []Variant{VariantOpenable},
			grammars: []Grammar{
				{Verbs: []string{"open"}, Dobj: RoleSelf, Handler: openLockedCommand},
				{Verbs: []string{"lock"}, Dobj: RoleSelf, Handler: lockCommand},
				{Verbs: []string{"unlock"}, Dobj: RoleSelf, Handler: unlockCommand},
				{Verbs: []string{"lock"}, Dobj: RoleSelf, Preps: []string{"with", "using"}, Iobj: RoleAny, Handler: lockCommand},
				{Verbs: []string{"unlock"}, Dobj: RoleSelf, Preps: []string{"with", "using"}, Iobj: RoleAny, Handler: unlockCommand},
			},
			messages: lockableMessages,
		},
		VariantContainable: {
			grammars: []Grammar{
				{Verbs: []string{"put"}, Dobj: RoleAny, Preps: []string{"in"}, Iobj: RoleSelf, Handler: putInCommand},
				{Verbs: []string{"take", "get", "remove"}, Dobj: RoleAny, Preps: []string{"from"}, Iobj: RoleSelf, Handler: takeFromCommand},
				{Verbs: lookVerbs, Preps: []string{"in"}, Iobj: RoleSelf, Handler: lookInCommand},
			},
			messages: containableMessages,
		},
		VariantWearable: {
			grammars: []Grammar{
				{Verbs: []string{"wear"}, Dobj: RoleSelf, Handler: wearCommand},
				{Verbs: []string{"remove"}, Dobj: RoleSelf, Handler: removeCommand},
			},
			messages: wearableMessages,
		},
		VariantHoldable: {
			grammars: []Grammar{
				{Verbs: []string{"wield", "hold"}, Dobj: RoleSelf, Handler: wieldCommand},
				{Verbs: []string{"unwield", "remove"}, Dobj: RoleSelf, Handler: unwieldCommand},
			},
			messages: holdableMessages,
		},
		VariantPositionable: {
			grammars: []Grammar{
				{Verbs: positionVerbs, Preps: positionPreps, Iobj: RoleSelf, Handler: positionSelfCommand},
				{Verbs: placementVerbs, Dobj: RoleAny, Preps: placementPreps, Iobj: RoleSelf, Handler: positionObjectCommand},
			},
			messages: positionableMessages,
		},
		VariantObject: {
			parents: []Variant{VariantThing},
			grammars: []Grammar{
				{Verbs: takeVerbs, Dobj: RoleSelf, Handler: takeCommand},
				{Verbs: []string{"drop"}, Dobj: RoleSelf, Handler: dropCommand},
				{Verbs: []string{"use"}, Dobj: RoleSelf, Handler: useCommand},
				{Verbs: []string{"use"}, Dobj: RoleSelf, Preps: []string{"on"}, Iobj: RoleAny, Handler: useOnCommand},
			},
			messages: objectMessages,
		},
		VariantContainer: {
			parents: []Variant{VariantObject, VariantContainable},
		},
		VariantOpenableContainer: {
			parents: []Variant{VariantContainer, VariantOpenable},
		},
		VariantLockableContainer: {
			parents: []Variant{VariantOpenableContainer, VariantLockable},
		},
		VariantFurniture: {
			parents: []Variant{VariantObject, VariantPositionable},
		},
		VariantClothing: {
			parents: []Variant{VariantObject, VariantContainable, VariantWearable},
		},
		VariantHeldObject: {
			parents: []Variant{VariantObject, VariantHoldable},
		},
		VariantPlayer: {
			parents:  []Variant{VariantThing},
			grammars: playerGrammars(),
		},
		VariantProgrammer: {
			parents:  []Variant{VariantPlayer},
			grammars: programmerGrammars(),
		},
	}
}
