package cmd

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/ashvale/ember/src/game"
	"github.com/ashvale/ember/src/sys"
)

func init() {
	sys.RegisterCommand(&discordgo.ApplicationCommand{
		Name:        "rpg",
		Description: "Text adventure",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "profile",
				Description: "Your character sheet",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "hunt",
				Description: "Fight a monster",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "rest",
				Description: "Spend gold to heal up",
			},
		},
	}, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		options := i.ApplicationCommandData().Options
		if len(options) == 0 {
			return
		}
		switch options[0].Name {
		case "profile":
			handleRPGProfile(s, i)
		case "hunt":
			handleRPGHunt(s, i)
		case "rest":
			handleRPGRest(s, i)
		}
	})
}

func handleRPGProfile(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := sys.InteractionUser(i)
	ctx, cancel := cmdContext()
	defer cancel()

	c, err := sys.EnsureRPGCharacter(ctx, i.GuildID, user.ID)
	if err != nil {
		sys.LogError("rpg profile failed: %v", err)
		respondError(s, i, "Could not load your character.")
		return
	}

	embed := sys.NewEmbed(fmt.Sprintf("%s, Level %d Adventurer", user.Username, c.Level))
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "HP", Value: fmt.Sprintf("%d / %d", c.HP, c.MaxHP), Inline: true},
		{Name: "Attack", Value: fmt.Sprintf("%d", c.Attack), Inline: true},
		{Name: "Gold", Value: fmt.Sprintf("%d", c.Gold), Inline: true},
		{Name: "XP", Value: fmt.Sprintf("%d / %d", c.XP, c.Level*100), Inline: true},
	}
	sys.RespondEmbed(s, i, embed)
}

func handleRPGHunt(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := sys.InteractionUser(i)
	ctx, cancel := cmdContext()
	defer cancel()

	c, err := sys.EnsureRPGCharacter(ctx, i.GuildID, user.ID)
	if err != nil {
		sys.LogError("rpg hunt failed: %v", err)
		respondError(s, i, "Could not load your character.")
		return
	}
	if c.HP <= 0 {
		respondError(s, i, "You're at 0 HP. Use `/rpg rest` first.")
		return
	}

	rng := newRNG()
	monster := game.SpawnMonster(rng, c.Level)
	monsterHP := monster.HP

	var log strings.Builder
	fmt.Fprintf(&log, "A wild **%s** appears! (%d HP, %d ATK)\n\n", monster.Name, monster.HP, monster.Attack)

	rounds := 0
	for c.HP > 0 && monsterHP > 0 && rounds < 30 {
		rounds++
		round := game.FightTurn(rng, c.Attack, monster.Attack)
		monsterHP -= round.PlayerDamage
		if round.Crit {
			fmt.Fprintf(&log, "💥 **CRIT!** You hit for %d.\n", round.PlayerDamage)
		}
		if monsterHP <= 0 {
			break
		}
		c.HP -= round.MonsterDamage
	}

	won := monsterHP <= 0
	if won {
		c.Gold += monster.Gold
		c.XP += monster.XP
		newLevel, remaining, hpGain, atkGain := game.RPGLevelUp(c.Level, c.XP)
		leveled := newLevel > c.Level
		c.Level, c.XP = newLevel, remaining
		c.MaxHP += hpGain
		c.Attack += atkGain

		fmt.Fprintf(&log, "You slew the %s after %d rounds!\n+%d gold, +%d XP", monster.Name, rounds, monster.Gold, monster.XP)
		if leveled {
			fmt.Fprintf(&log, "\n⬆️ **Level up!** You are now level %d.", c.Level)
		}
	} else {
		if c.HP < 0 {
			c.HP = 0
		}
		fmt.Fprintf(&log, "The %s beat you down after %d rounds. You limp away at %d HP.", monster.Name, rounds, c.HP)
	}

	if err := sys.SaveRPGCharacter(ctx, c); err != nil {
		sys.LogError("rpg save failed: %v", err)
	}

	title := "Victory!"
	if !won {
		title = "Defeat"
	}
	embed := sys.NewEmbed(title)
	embed.Description = log.String()
	embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("HP %d/%d", c.HP, c.MaxHP)}
	sys.RespondEmbed(s, i, embed)
}

const rpgRestCost = 20

func handleRPGRest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := sys.InteractionUser(i)
	ctx, cancel := cmdContext()
	defer cancel()

	c, err := sys.EnsureRPGCharacter(ctx, i.GuildID, user.ID)
	if err != nil {
		sys.LogError("rpg rest failed: %v", err)
		respondError(s, i, "Could not load your character.")
		return
	}
	if c.HP >= c.MaxHP {
		sys.RespondEphemeral(s, i, "You're already at full HP.")
		return
	}
	if c.Gold < rpgRestCost {
		respondError(s, i, fmt.Sprintf("An inn bed costs %d gold and you have %d.", rpgRestCost, c.Gold))
		return
	}

	c.Gold -= rpgRestCost
	c.HP = c.MaxHP
	if err := sys.SaveRPGCharacter(ctx, c); err != nil {
		sys.LogError("rpg save failed: %v", err)
		respondError(s, i, "Something went wrong at the inn.")
		return
	}
	sys.Respond(s, i, fmt.Sprintf("🛏️ You rest at the inn for %d gold and wake at **%d HP**.", rpgRestCost, c.MaxHP))
}
